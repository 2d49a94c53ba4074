// Package pipeline turns raw export bytes into validated outbreak records.
//
// Each entry point decodes, parses, filters and transforms one batch and
// either returns every record or an error wrapping ErrProcessing. Nothing is
// retried and no partial output is returned. The package holds no mutable
// state, so calls may run concurrently.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/JonMunkholm/flockwatch/internal/csvparse"
	"github.com/JonMunkholm/flockwatch/internal/logging"
	"github.com/JonMunkholm/flockwatch/internal/outbreak"
)

// ErrProcessing prefixes every pipeline failure. The underlying cause stays
// reachable through errors.As.
var ErrProcessing = errors.New("processing CSV data")

// PeriodExports carries the two raw documents behind the 30 day summary.
type PeriodExports struct {
	AffectedTotals  []byte
	ConfirmedTotals []byte
}

// ProcessStateCases runs the "Map Comparisons" export through the pipeline.
// States without a name or without affected birds are dropped before
// transformation.
func ProcessStateCases(ctx context.Context, raw []byte) ([]outbreak.StateCases, error) {
	logger := logging.WithFields(ctx, "export", "state_cases")

	text, err := Decode(raw)
	if err != nil {
		return nil, fail(logger, err)
	}

	rows, err := csvparse.Parse(text, StateCasesConfig.options())
	if err != nil {
		return nil, fail(logger, err)
	}

	kept := FilterStateRows(rows)
	logger.Debug("export parsed", "rows_parsed", len(rows), "rows_kept", len(kept))

	records, err := outbreak.TransformStateCases(kept)
	if err != nil {
		return nil, fail(logger, err)
	}

	logger.Info("state cases processed", "records", len(records))
	return records, nil
}

// ProcessPeriodSummaries runs the two totals exports through the pipeline and
// returns the single summary as a one element slice.
func ProcessPeriodSummaries(ctx context.Context, exports PeriodExports) ([]outbreak.PeriodSummary, error) {
	logger := logging.WithFields(ctx, "export", "period_summaries")

	affectedText, err := Decode(exports.AffectedTotals)
	if err != nil {
		return nil, fail(logger, err)
	}
	confirmedText, err := Decode(exports.ConfirmedTotals)
	if err != nil {
		return nil, fail(logger, err)
	}

	affected, err := csvparse.Parse(affectedText, AffectedTotalsConfig.options())
	if err != nil {
		return nil, fail(logger, err)
	}
	confirmed := csvparse.ParsePairs(confirmedText, ConfirmedTotalsDelimiter)
	logger.Debug("exports parsed", "affected_rows", len(affected), "confirmed_keys", len(confirmed))

	summary, err := outbreak.TransformPeriodSummary(affected, confirmed)
	if err != nil {
		return nil, fail(logger, err)
	}

	logger.Info("period summary processed", "period", summary.PeriodName)
	return []outbreak.PeriodSummary{summary}, nil
}

// FilterStateRows drops rows with a blank state name or whose affected bird
// count is exactly "0". The input slice is not modified.
func FilterStateRows(rows []csvparse.Row) []csvparse.Row {
	kept := make([]csvparse.Row, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row[outbreak.FieldStateName]) == "" {
			continue
		}
		if row[outbreak.FieldBirdsAffected] == "0" {
			continue
		}
		kept = append(kept, row)
	}
	return kept
}

func fail(logger *slog.Logger, err error) error {
	logger.Error("pipeline failed", "error", err)
	return fmt.Errorf("%w: %w", ErrProcessing, err)
}
