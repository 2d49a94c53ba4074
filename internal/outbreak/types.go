// Package outbreak holds the typed outbreak records and the transformers that
// build them from parsed export rows.
//
// Every transformer validates each row independently and in input order. The
// first invalid row aborts the batch: callers get a typed error naming the row
// and the cause, and no partial results.
package outbreak

import "time"

// Column names used by the per-state "Map Comparisons" export.
const (
	FieldStateAbbreviation = "State Abbreviation"
	FieldStateName         = "State Name"
	FieldBackyardFlocks    = "Backyard Flocks"
	FieldBirdsAffected     = "Birds Affected"
	FieldColor             = "Color"
	FieldCommercialFlocks  = "Commercial Flocks"
	FieldDetectionText     = "Last Reported Detection Text"
	FieldTotalFlocks       = "Total Flocks"
	FieldStateBoundary     = "State Boundary"
	FieldStateLabel        = "State Label"
	FieldLatitude          = "Latitude (generated)"
	FieldLongitude         = "Longitude (generated)"
)

// Column and key names used by the 30 day totals exports.
const (
	FieldAffectedRowLabel       = "1"
	FieldPeriodCommercialFlocks = "Commercial Flocks (last 30 days)"
	FieldPeriodBackyardFlocks   = "Backyard Flocks (last 30 days)"
	FieldPeriodBirdsAffected    = "Birds Affected (last 30 days)"
	FieldPeriodTotalFlocks      = "Total Flocks (last 30 days)"
)

// PeriodLast30Days names the trailing 30 day reporting window.
const PeriodLast30Days = "last_30_days"

// StateCases is the all-time outbreak summary for one state.
type StateCases struct {
	StateAbbreviation     string    `json:"state_abbreviation" yaml:"state_abbreviation"`
	State                 string    `json:"state" yaml:"state"`
	BackyardFlocks        int64     `json:"backyard_flocks" yaml:"backyard_flocks"`
	CommercialFlocks      int64     `json:"commercial_flocks" yaml:"commercial_flocks"`
	BirdsAffected         int64     `json:"birds_affected" yaml:"birds_affected"`
	TotalFlocks           int64     `json:"total_flocks" yaml:"total_flocks"`
	Latitude              float64   `json:"latitude" yaml:"latitude"`
	Longitude             float64   `json:"longitude" yaml:"longitude"`
	LastReportedDetection time.Time `json:"last_reported_detection" yaml:"last_reported_detection"`
}

// PeriodSummary aggregates affected birds and flocks over a named window.
type PeriodSummary struct {
	PeriodName                    string `json:"period_name" yaml:"period_name"`
	TotalBirdsAffected            int64  `json:"total_birds_affected" yaml:"total_birds_affected"`
	TotalFlocksAffected           int64  `json:"total_flocks_affected" yaml:"total_flocks_affected"`
	TotalBackyardFlocksAffected   int64  `json:"total_backyard_flocks_affected" yaml:"total_backyard_flocks_affected"`
	TotalCommercialFlocksAffected int64  `json:"total_commercial_flocks_affected" yaml:"total_commercial_flocks_affected"`
}
