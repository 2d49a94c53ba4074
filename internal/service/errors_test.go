package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/flockwatch/internal/csvparse"
	"github.com/JonMunkholm/flockwatch/internal/exporter"
	"github.com/JonMunkholm/flockwatch/internal/outbreak"
	"github.com/JonMunkholm/flockwatch/internal/pipeline"
	"github.com/JonMunkholm/flockwatch/internal/store"
)

func wrapped(err error) error {
	return fmt.Errorf("%w: %w", pipeline.ErrProcessing, &outbreak.RowError{Row: 3, Err: err})
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode string
	}{
		{"nil error returns empty", nil, ""},
		{"malformed row", fmt.Errorf("%w: %w", pipeline.ErrProcessing, &csvparse.MalformedRowError{Line: 3, Expected: 12, Actual: 3}), "PARSE001"},
		{"csv syntax", &csvparse.SyntaxError{Line: 2, Err: errors.New("bare quote")}, "PARSE002"},
		{"missing field", wrapped(&outbreak.MissingFieldError{Field: "State Name"}), "VAL001"},
		{"invalid number", wrapped(&outbreak.InvalidNumberError{Field: "Total Flocks", Value: "x"}), "VAL002"},
		{"date format", wrapped(&outbreak.InvalidDateFormatError{Text: "none"}), "VAL003"},
		{"date value", wrapped(&outbreak.InvalidDateValueError{Text: "2/30/2025"}), "VAL004"},
		{"no totals", fmt.Errorf("x: %w", outbreak.ErrNoAffectedTotals), "VAL005"},
		{"fetch failure", &exporter.FetchError{Source: "http://x", Status: 502}, "EXP001"},
		{"too large", &exporter.FetchError{Source: "http://x", Err: exporter.ErrTooLarge}, "EXP002"},
		{"not initialized", store.ErrNotInitialized, "DB004"},
		{"missing credentials", ErrMissingCredentials, "AUTH001"},
		{"invalid credentials", ErrInvalidCredentials, "AUTH002"},
		{"too many runs", ErrTooManyRuns, "RUN001"},
		{"rate limited", ErrRateLimited, "RATE001"},
		{"rate limit text is not typed", errors.New("upstream rate limit"), "ERR000"},
		{"deadline", fmt.Errorf("run: %w", context.DeadlineExceeded), "RUN002"},
		{"cancelled", context.Canceled, "RUN003"},
		{"pg check violation", fmt.Errorf("copy: %w", &pgconn.PgError{Code: "23514", Message: "range"}), "DB003"},
		{"pg unique violation", &pgconn.PgError{Code: "23505"}, "DB003"},
		{"connection refused pattern", errors.New("dial tcp 127.0.0.1:5432: connect: Connection Refused"), "DB001"},
		{"check constraint pattern", errors.New("ERROR: new row violates check constraint"), "DB003"},
		{"duplicate key pattern", errors.New("duplicate key value violates unique constraint"), "DB003"},
		{"unknown", errors.New("something odd"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MapError(tt.err)
			if got.Code != tt.wantCode {
				t.Errorf("MapError() code = %q, want %q", got.Code, tt.wantCode)
			}
			if tt.err != nil && got.Message == "" {
				t.Error("MapError() message is empty")
			}
		})
	}
}

func TestFormatUserError(t *testing.T) {
	got := FormatUserError(ErrTooManyRuns)
	want := "A scrape is already running (Code: RUN001). Please wait a moment and try again"
	if got != want {
		t.Errorf("FormatUserError() = %q, want %q", got, want)
	}
	if FormatUserError(nil) != "" {
		t.Error("FormatUserError(nil) should be empty")
	}
}

func TestIsUserFacing(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{errors.New("something odd"), false},
		{ErrInvalidCredentials, true},
		{wrapped(&outbreak.MissingFieldError{Field: "x"}), true},
	}
	for _, tt := range tests {
		if got := IsUserFacing(tt.err); got != tt.want {
			t.Errorf("IsUserFacing(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}
