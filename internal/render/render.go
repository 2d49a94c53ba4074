// Package render writes scrape results as JSON, YAML or an XLSX workbook.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/JonMunkholm/flockwatch/internal/outbreak"
)

// Format names an output encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatXLSX Format = "xlsx"
)

// Sheet names used in XLSX output.
const (
	StateCasesSheet      = "Flock Cases By State"
	PeriodSummariesSheet = "Period Summaries"
)

// Document is the rendered shape of a run, matching the HTTP response body.
type Document struct {
	FlockCasesByState []outbreak.StateCases    `json:"flock_cases_by_state" yaml:"flock_cases_by_state"`
	PeriodSummaries   []outbreak.PeriodSummary `json:"period_summaries" yaml:"period_summaries"`
}

// ParseFormat accepts a format name case-insensitively. "yml" is an alias for yaml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json", "":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json, yaml or xlsx)", s)
}

// Write encodes doc to w in the given format.
func Write(w io.Writer, format Format, doc Document) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(doc)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	case FormatXLSX:
		return writeXLSX(w, doc)
	}
	return fmt.Errorf("unknown output format %q", format)
}

var (
	stateCasesHeader = []any{
		"state_abbreviation", "state", "backyard_flocks", "commercial_flocks",
		"birds_affected", "total_flocks", "latitude", "longitude", "last_reported_detection",
	}
	periodSummariesHeader = []any{
		"period_name", "total_birds_affected", "total_flocks_affected",
		"total_backyard_flocks_affected", "total_commercial_flocks_affected",
	}
)

// writeXLSX writes one sheet per record type. Each sheet starts with a header
// row of the JSON field names.
func writeXLSX(w io.Writer, doc Document) error {
	f := excelize.NewFile()
	defer f.Close()

	// Rename the default sheet instead of creating a new one so the workbook
	// does not carry an empty "Sheet1".
	if err := f.SetSheetName(f.GetSheetName(0), StateCasesSheet); err != nil {
		return fmt.Errorf("xlsx: rename sheet: %w", err)
	}
	if _, err := f.NewSheet(PeriodSummariesSheet); err != nil {
		return fmt.Errorf("xlsx: create sheet: %w", err)
	}

	stateRows := make([][]any, 0, len(doc.FlockCasesByState)+1)
	stateRows = append(stateRows, stateCasesHeader)
	for _, r := range doc.FlockCasesByState {
		stateRows = append(stateRows, []any{
			r.StateAbbreviation, r.State, r.BackyardFlocks, r.CommercialFlocks,
			r.BirdsAffected, r.TotalFlocks, r.Latitude, r.Longitude,
			r.LastReportedDetection.Format("2006-01-02"),
		})
	}
	if err := setRows(f, StateCasesSheet, stateRows); err != nil {
		return err
	}

	periodRows := make([][]any, 0, len(doc.PeriodSummaries)+1)
	periodRows = append(periodRows, periodSummariesHeader)
	for _, p := range doc.PeriodSummaries {
		periodRows = append(periodRows, []any{
			p.PeriodName, p.TotalBirdsAffected, p.TotalFlocksAffected,
			p.TotalBackyardFlocksAffected, p.TotalCommercialFlocksAffected,
		})
	}
	if err := setRows(f, PeriodSummariesSheet, periodRows); err != nil {
		return err
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("xlsx: write: %w", err)
	}
	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("xlsx: %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
