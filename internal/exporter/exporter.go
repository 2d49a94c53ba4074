// Package exporter obtains the raw export documents the pipeline consumes.
//
// Exporters only move bytes. They do not decode or parse anything.
package exporter

import (
	"context"
	"errors"
	"fmt"

	"github.com/JonMunkholm/flockwatch/internal/config"
	"github.com/JonMunkholm/flockwatch/internal/pipeline"
)

// File names written by the reporting dashboard's download button.
const (
	StateCasesFile      = "Map Comparisons.csv"
	AffectedTotalsFile  = "Affected Totals.csv"
	ConfirmedTotalsFile = "Confirmed Flocks Total.csv"
)

// ErrTooLarge is returned when an export exceeds the configured size cap.
var ErrTooLarge = errors.New("export exceeds size limit")

// Exporter supplies one set of raw export documents.
type Exporter interface {
	StateCases(ctx context.Context) ([]byte, error)
	PeriodExports(ctx context.Context) (pipeline.PeriodExports, error)
}

// FetchError describes a failed download or read of one export document.
type FetchError struct {
	Source string // URL or file path
	Status int    // HTTP status, 0 when not applicable
	Err    error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("export fetch failed: %s: HTTP %d", e.Source, e.Status)
	}
	return fmt.Sprintf("export fetch failed: %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// New returns the exporter selected by cfg: a DirExporter when a directory
// is configured, an HTTPExporter otherwise.
func New(cfg config.ExportConfig) Exporter {
	if cfg.FromDir() {
		return &DirExporter{Dir: cfg.Dir, MaxBytes: cfg.MaxBytes}
	}
	return NewHTTPExporter(HTTPConfig{
		StateCasesURL:      cfg.StateCasesURL,
		AffectedTotalsURL:  cfg.AffectedTotalsURL,
		ConfirmedTotalsURL: cfg.ConfirmedTotalsURL,
		Timeout:            cfg.FetchTimeout,
		MaxBytes:           cfg.MaxBytes,
	})
}
