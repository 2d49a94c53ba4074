package render

import (
	"fmt"

	"github.com/Knetic/govaluate"

	"github.com/JonMunkholm/flockwatch/internal/outbreak"
)

// Filter selects state records with a boolean expression over their
// snake_case field names, e.g. "birds_affected > 1000000 && state_abbreviation != 'IA'".
// Numeric fields are float64. last_reported_detection is Unix seconds, which
// is what govaluate turns a quoted date literal such as '2025-01-01' into.
type Filter struct {
	expr *govaluate.EvaluableExpression
	src  string
}

// NewFilter compiles expr. An empty expression matches everything and
// returns a nil Filter.
func NewFilter(expr string) (*Filter, error) {
	if expr == "" {
		return nil, nil
	}
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter %q: %w", expr, err)
	}
	for _, v := range e.Vars() {
		if _, ok := filterFields[v]; !ok {
			return nil, fmt.Errorf("invalid filter %q: unknown field %q", expr, v)
		}
	}
	return &Filter{expr: e, src: expr}, nil
}

// filterFields are the names an expression may reference.
var filterFields = map[string]struct{}{
	"state_abbreviation": {}, "state": {}, "backyard_flocks": {}, "commercial_flocks": {},
	"birds_affected": {}, "total_flocks": {}, "latitude": {}, "longitude": {},
	"last_reported_detection": {},
}

// Match reports whether r satisfies the filter. A nil Filter matches all records.
func (f *Filter) Match(r outbreak.StateCases) (bool, error) {
	if f == nil {
		return true, nil
	}

	res, err := f.expr.Evaluate(parameters(r))
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.src, err)
	}
	ok, isBool := res.(bool)
	if !isBool {
		return false, fmt.Errorf("filter %q yields %T, not a boolean", f.src, res)
	}
	return ok, nil
}

// Apply returns the records that match, in their original order.
func (f *Filter) Apply(records []outbreak.StateCases) ([]outbreak.StateCases, error) {
	if f == nil {
		return records, nil
	}
	out := make([]outbreak.StateCases, 0, len(records))
	for _, r := range records {
		ok, err := f.Match(r)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func parameters(r outbreak.StateCases) map[string]any {
	return map[string]any{
		"state_abbreviation":      r.StateAbbreviation,
		"state":                   r.State,
		"backyard_flocks":         float64(r.BackyardFlocks),
		"commercial_flocks":       float64(r.CommercialFlocks),
		"birds_affected":          float64(r.BirdsAffected),
		"total_flocks":            float64(r.TotalFlocks),
		"latitude":                r.Latitude,
		"longitude":               r.Longitude,
		"last_reported_detection": float64(r.LastReportedDetection.Unix()),
	}
}
