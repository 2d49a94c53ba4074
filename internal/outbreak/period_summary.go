package outbreak

import (
	"fmt"

	"github.com/JonMunkholm/flockwatch/internal/csvparse"
)

// TransformPeriodSummary builds the 30 day summary from the two totals exports.
//
// affected holds the parsed "Affected Totals" rows; only the first data row is
// read. confirmed holds the key/value pairs of the "Confirmed Flocks Total"
// export. Values accept K and M magnitude suffixes and must be non-negative.
func TransformPeriodSummary(affected []csvparse.Row, confirmed map[string]string) (PeriodSummary, error) {
	if len(affected) == 0 {
		return PeriodSummary{}, fmt.Errorf("30-day data transformation failed: %w", ErrNoAffectedTotals)
	}
	totals := affected[0]

	required := []struct {
		source map[string]string
		field  string
	}{
		{totals, FieldPeriodBirdsAffected},
		{confirmed, FieldPeriodTotalFlocks},
		{totals, FieldPeriodBackyardFlocks},
		{totals, FieldPeriodCommercialFlocks},
	}
	for _, r := range required {
		if err := requireField(r.source, r.field); err != nil {
			return PeriodSummary{}, fmt.Errorf("30-day data transformation failed: %w", err)
		}
	}

	values := make([]int64, len(required))
	for i, r := range required {
		v, err := parseMagnitude(r.field, r.source[r.field])
		if err != nil {
			return PeriodSummary{}, fmt.Errorf("30-day data transformation failed: %w", err)
		}
		values[i] = v
	}

	return PeriodSummary{
		PeriodName:                    PeriodLast30Days,
		TotalBirdsAffected:            values[0],
		TotalFlocksAffected:           values[1],
		TotalBackyardFlocksAffected:   values[2],
		TotalCommercialFlocksAffected: values[3],
	}, nil
}
