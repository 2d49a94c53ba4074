package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/flockwatch/internal/exporter"
	"github.com/JonMunkholm/flockwatch/internal/render"
	"github.com/JonMunkholm/flockwatch/internal/service"
)

type parseOptions struct {
	dir      string
	format   string
	out      string
	where    string
	maxBytes int64
}

func newParseCmd() *cobra.Command {
	opts := &parseOptions{}

	cmd := &cobra.Command{
		Use:   "parse",
		Short: "Parse export files from a directory and print the records",
		Long: fmt.Sprintf(`parse reads %q, %q and %q from --dir,
runs them through the validation pipelines and writes the records.

--where filters state records with an expression over their snake_case fields:
  flockwatch parse --dir ./exports --where "birds_affected > 1000000 && commercial_flocks > 0"`,
			exporter.StateCasesFile, exporter.AffectedTotalsFile, exporter.ConfirmedTotalsFile),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, opts)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&opts.dir, "dir", "d", "", "directory holding the export files (required)")
	f.StringVarP(&opts.format, "format", "f", "json", "output format: json, yaml or xlsx")
	f.StringVarP(&opts.out, "out", "o", "", "output file (default stdout; required for xlsx)")
	f.StringVarP(&opts.where, "where", "w", "", "filter expression for state records")
	f.Int64Var(&opts.maxBytes, "max-bytes", 10<<20, "maximum size of one export file")
	_ = cmd.MarkFlagRequired("dir")

	return cmd
}

func runParse(cmd *cobra.Command, opts *parseOptions) error {
	format, err := render.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	if format == render.FormatXLSX && opts.out == "" {
		return errors.New("--out is required for xlsx output")
	}

	filter, err := render.NewFilter(opts.where)
	if err != nil {
		return err
	}

	svc, err := service.New(&exporter.DirExporter{Dir: opts.dir, MaxBytes: opts.maxBytes}, nil, service.Options{
		MaxConcurrent: 1,
	})
	if err != nil {
		return err
	}

	res, err := svc.Run(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s\n%w", service.FormatUserError(err), err)
	}

	states, err := filter.Apply(res.StateCases)
	if err != nil {
		return err
	}

	doc := render.Document{FlockCasesByState: states, PeriodSummaries: res.PeriodSummaries}
	if opts.out == "" {
		return render.Write(cmd.OutOrStdout(), format, doc)
	}
	return writeFile(opts.out, format, doc)
}

// writeFile renders into a temp file next to path and renames it into place,
// so a failed render never leaves a truncated file behind.
func writeFile(path string, format render.Format, doc render.Document) (err error) {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	if err = render.Write(tmp, format, doc); err != nil {
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
