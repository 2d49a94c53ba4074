package pipeline

import (
	"github.com/JonMunkholm/flockwatch/internal/csvparse"
	"github.com/JonMunkholm/flockwatch/internal/outbreak"
)

// ParseConfig describes the layout of one export document.
type ParseConfig struct {
	Headers   []string
	Delimiter rune
	StartRow  int
}

func (c ParseConfig) options() csvparse.Options {
	return csvparse.Options{
		Delimiter: c.Delimiter,
		StartRow:  c.StartRow,
		Headers:   csvparse.Columns(c.Headers...),
	}
}

// StateCasesConfig is the layout of the "Map Comparisons" export. Line 1 is
// the export's own header row.
var StateCasesConfig = ParseConfig{
	Headers: []string{
		outbreak.FieldStateAbbreviation,
		outbreak.FieldStateName,
		outbreak.FieldBackyardFlocks,
		outbreak.FieldBirdsAffected,
		outbreak.FieldColor,
		outbreak.FieldCommercialFlocks,
		outbreak.FieldDetectionText,
		outbreak.FieldTotalFlocks,
		outbreak.FieldStateBoundary,
		outbreak.FieldStateLabel,
		outbreak.FieldLatitude,
		outbreak.FieldLongitude,
	},
	Delimiter: '\t',
	StartRow:  2,
}

// AffectedTotalsConfig is the layout of the "Affected Totals" export.
var AffectedTotalsConfig = ParseConfig{
	Headers: []string{
		outbreak.FieldAffectedRowLabel,
		outbreak.FieldPeriodCommercialFlocks,
		outbreak.FieldPeriodBackyardFlocks,
		outbreak.FieldPeriodBirdsAffected,
	},
	Delimiter: '\t',
	StartRow:  2,
}

// ConfirmedTotalsDelimiter separates key and value in the "Confirmed Flocks
// Total" export, which has one pair per line.
const ConfirmedTotalsDelimiter = '\t'
