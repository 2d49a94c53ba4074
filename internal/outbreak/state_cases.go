package outbreak

import (
	"strings"

	"github.com/JonMunkholm/flockwatch/internal/csvparse"
)

// stateCasesRequired lists the fields every state row must carry, in the
// order they are checked.
var stateCasesRequired = []string{
	FieldStateAbbreviation,
	FieldStateName,
	FieldBackyardFlocks,
	FieldCommercialFlocks,
	FieldBirdsAffected,
	FieldTotalFlocks,
	FieldLatitude,
	FieldLongitude,
	FieldDetectionText,
}

// TransformStateCases converts filtered "Map Comparisons" rows into StateCases.
//
// Rows are handled in order. The first failing row stops the batch and the
// returned *RowError carries its 0-based index; no records are returned.
func TransformStateCases(rows []csvparse.Row) ([]StateCases, error) {
	out := make([]StateCases, 0, len(rows))
	for i, row := range rows {
		rec, err := transformStateRow(row)
		if err != nil {
			return nil, &RowError{Row: i, Err: err}
		}
		out = append(out, rec)
	}
	return out, nil
}

func transformStateRow(row csvparse.Row) (StateCases, error) {
	for _, field := range stateCasesRequired {
		if err := requireField(row, field); err != nil {
			return StateCases{}, err
		}
	}

	var (
		rec StateCases
		err error
	)
	rec.StateAbbreviation = strings.TrimSpace(row[FieldStateAbbreviation])
	rec.State = strings.TrimSpace(row[FieldStateName])

	if rec.BackyardFlocks, err = parseCount(FieldBackyardFlocks, row[FieldBackyardFlocks]); err != nil {
		return StateCases{}, err
	}
	if rec.CommercialFlocks, err = parseCount(FieldCommercialFlocks, row[FieldCommercialFlocks]); err != nil {
		return StateCases{}, err
	}
	if rec.BirdsAffected, err = parseCount(FieldBirdsAffected, row[FieldBirdsAffected]); err != nil {
		return StateCases{}, err
	}
	if rec.TotalFlocks, err = parseCount(FieldTotalFlocks, row[FieldTotalFlocks]); err != nil {
		return StateCases{}, err
	}
	if rec.Latitude, err = parseCoordinate(FieldLatitude, row[FieldLatitude], 90); err != nil {
		return StateCases{}, err
	}
	if rec.Longitude, err = parseCoordinate(FieldLongitude, row[FieldLongitude], 180); err != nil {
		return StateCases{}, err
	}
	if rec.LastReportedDetection, err = extractDetectionDate(row[FieldDetectionText]); err != nil {
		return StateCases{}, err
	}

	return rec, nil
}

// requireField fails when field is absent from row or holds only whitespace.
func requireField(row map[string]string, field string) error {
	if strings.TrimSpace(row[field]) == "" {
		return &MissingFieldError{Field: field}
	}
	return nil
}
