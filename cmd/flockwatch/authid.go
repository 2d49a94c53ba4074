package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/flockwatch/internal/config"
	"github.com/JonMunkholm/flockwatch/internal/service"
	"github.com/JonMunkholm/flockwatch/internal/store"
)

var errNoDatabaseURL = errors.New("no database url: pass --database-url or set DATABASE_URL")

func newAuthIDCmd() *cobra.Command {
	var databaseURL string

	cmd := &cobra.Command{
		Use:   "auth-id",
		Short: "Print the bearer token the scrape endpoint expects",
		Long: `auth-id reads the scraper's auth id from the database and prints it.

The server creates the id on first start and never logs it in full. Send it as
"Authorization: Bearer <auth id>" to POST /scraper/process-data.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			url, err := resolveDatabaseURL(databaseURL)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := store.Connect(ctx, config.DatabaseConfig{URL: url, MaxConns: 1})
			if err != nil {
				return fmt.Errorf("%s\n%w", service.FormatUserError(err), err)
			}
			defer pool.Close()

			id, err := store.New(pool).AuthID(ctx)
			if err != nil {
				return fmt.Errorf("%s\n%w", service.FormatUserError(err), err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}

	cmd.Flags().StringVar(&databaseURL, "database-url", "", "PostgreSQL url (default $DATABASE_URL, then $DB_URL)")
	return cmd
}

// resolveDatabaseURL prefers the flag, then the same variables the server
// reads, including a local .env file.
func resolveDatabaseURL(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	_ = godotenv.Load()
	for _, name := range []string{"DATABASE_URL", "DB_URL"} {
		if v := os.Getenv(name); v != "" {
			return v, nil
		}
	}
	return "", errNoDatabaseURL
}
