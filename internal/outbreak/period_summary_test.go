package outbreak

import (
	"errors"
	"testing"

	"github.com/JonMunkholm/flockwatch/internal/csvparse"
)

func affectedTotals() []csvparse.Row {
	return []csvparse.Row{{
		FieldAffectedRowLabel:       "1",
		FieldPeriodCommercialFlocks: "12",
		FieldPeriodBackyardFlocks:   "25",
		FieldPeriodBirdsAffected:    "1.5M",
	}}
}

func confirmedTotals() map[string]string {
	return map[string]string{FieldPeriodTotalFlocks: "37"}
}

func TestTransformPeriodSummary(t *testing.T) {
	got, err := TransformPeriodSummary(affectedTotals(), confirmedTotals())
	if err != nil {
		t.Fatalf("TransformPeriodSummary() error = %v", err)
	}

	want := PeriodSummary{
		PeriodName:                    PeriodLast30Days,
		TotalBirdsAffected:            1500000,
		TotalFlocksAffected:           37,
		TotalBackyardFlocksAffected:   25,
		TotalCommercialFlocksAffected: 12,
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestTransformPeriodSummary_UsesFirstRow(t *testing.T) {
	rows := append(affectedTotals(), csvparse.Row{
		FieldPeriodCommercialFlocks: "999",
		FieldPeriodBackyardFlocks:   "999",
		FieldPeriodBirdsAffected:    "999",
	})

	got, err := TransformPeriodSummary(rows, confirmedTotals())
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got.TotalCommercialFlocksAffected != 12 {
		t.Errorf("TotalCommercialFlocksAffected = %d, want 12", got.TotalCommercialFlocksAffected)
	}
}

func TestTransformPeriodSummary_UnparseableIsZero(t *testing.T) {
	rows := affectedTotals()
	rows[0][FieldPeriodBirdsAffected] = "unknown"

	got, err := TransformPeriodSummary(rows, map[string]string{FieldPeriodTotalFlocks: "250K"})
	if err != nil {
		t.Fatalf("error = %v", err)
	}
	if got.TotalBirdsAffected != 0 {
		t.Errorf("TotalBirdsAffected = %d, want 0", got.TotalBirdsAffected)
	}
	if got.TotalFlocksAffected != 250000 {
		t.Errorf("TotalFlocksAffected = %d, want 250000", got.TotalFlocksAffected)
	}
}

func TestTransformPeriodSummary_Errors(t *testing.T) {
	tests := []struct {
		name      string
		affected  []csvparse.Row
		confirmed map[string]string
		field     string
		invalid   string
		sentinel  error
	}{
		{
			name:      "no affected rows",
			affected:  nil,
			confirmed: confirmedTotals(),
			sentinel:  ErrNoAffectedTotals,
		},
		{
			name:      "confirmed total missing",
			affected:  affectedTotals(),
			confirmed: map[string]string{},
			field:     FieldPeriodTotalFlocks,
		},
		{
			name: "birds affected blank",
			affected: func() []csvparse.Row {
				r := affectedTotals()
				r[0][FieldPeriodBirdsAffected] = ""
				return r
			}(),
			confirmed: confirmedTotals(),
			field:     FieldPeriodBirdsAffected,
		},
		{
			name: "backyard missing",
			affected: func() []csvparse.Row {
				r := affectedTotals()
				delete(r[0], FieldPeriodBackyardFlocks)
				return r
			}(),
			confirmed: confirmedTotals(),
			field:     FieldPeriodBackyardFlocks,
		},
		{
			name: "commercial missing",
			affected: func() []csvparse.Row {
				r := affectedTotals()
				delete(r[0], FieldPeriodCommercialFlocks)
				return r
			}(),
			confirmed: confirmedTotals(),
			field:     FieldPeriodCommercialFlocks,
		},
		{
			name: "negative birds affected",
			affected: func() []csvparse.Row {
				r := affectedTotals()
				r[0][FieldPeriodBirdsAffected] = "-1.5M"
				return r
			}(),
			confirmed: confirmedTotals(),
			invalid:   FieldPeriodBirdsAffected,
		},
		{
			name:      "negative confirmed total",
			affected:  affectedTotals(),
			confirmed: map[string]string{FieldPeriodTotalFlocks: "-3K"},
			invalid:   FieldPeriodTotalFlocks,
		},
		{
			name: "backyard overflows int64",
			affected: func() []csvparse.Row {
				r := affectedTotals()
				r[0][FieldPeriodBackyardFlocks] = "1e30M"
				return r
			}(),
			confirmed: confirmedTotals(),
			invalid:   FieldPeriodBackyardFlocks,
		},
		{
			name: "negative commercial",
			affected: func() []csvparse.Row {
				r := affectedTotals()
				r[0][FieldPeriodCommercialFlocks] = "-25"
				return r
			}(),
			confirmed: confirmedTotals(),
			invalid:   FieldPeriodCommercialFlocks,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TransformPeriodSummary(tt.affected, tt.confirmed)
			if err == nil {
				t.Fatal("expected error")
			}
			if tt.sentinel != nil {
				if !errors.Is(err, tt.sentinel) {
					t.Errorf("error = %v, want %v", err, tt.sentinel)
				}
				return
			}
			if tt.invalid != "" {
				var ne *InvalidNumberError
				if !errors.As(err, &ne) {
					t.Fatalf("error = %v, want *InvalidNumberError", err)
				}
				if ne.Field != tt.invalid {
					t.Errorf("Field = %q, want %q", ne.Field, tt.invalid)
				}
				return
			}
			var mf *MissingFieldError
			if !errors.As(err, &mf) {
				t.Fatalf("error = %v, want *MissingFieldError", err)
			}
			if mf.Field != tt.field {
				t.Errorf("Field = %q, want %q", mf.Field, tt.field)
			}
		})
	}
}
