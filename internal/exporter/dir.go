package exporter

import (
	"context"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/flockwatch/internal/pipeline"
)

// DirExporter reads previously downloaded exports from a directory.
type DirExporter struct {
	Dir      string
	MaxBytes int64
}

func (e *DirExporter) StateCases(ctx context.Context) ([]byte, error) {
	return e.read(ctx, StateCasesFile)
}

func (e *DirExporter) PeriodExports(ctx context.Context) (pipeline.PeriodExports, error) {
	affected, err := e.read(ctx, AffectedTotalsFile)
	if err != nil {
		return pipeline.PeriodExports{}, err
	}
	confirmed, err := e.read(ctx, ConfirmedTotalsFile)
	if err != nil {
		return pipeline.PeriodExports{}, err
	}
	return pipeline.PeriodExports{AffectedTotals: affected, ConfirmedTotals: confirmed}, nil
}

func (e *DirExporter) read(ctx context.Context, name string) ([]byte, error) {
	path := filepath.Join(e.Dir, name)
	if err := ctx.Err(); err != nil {
		return nil, &FetchError{Source: path, Err: err}
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, &FetchError{Source: path, Err: err}
	}
	defer f.Close()

	b, err := readLimited(f, e.MaxBytes)
	if err != nil {
		return nil, &FetchError{Source: path, Err: err}
	}
	return b, nil
}
