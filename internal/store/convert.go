package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/flockwatch/internal/outbreak"
)

// stateCasesRows lays records out in stateCasesColumns order for COPY.
func stateCasesRows(records []outbreak.StateCases) [][]any {
	rows := make([][]any, len(records))
	for i, r := range records {
		rows[i] = []any{
			r.StateAbbreviation,
			r.State,
			r.BackyardFlocks,
			r.CommercialFlocks,
			r.BirdsAffected,
			r.TotalFlocks,
			r.Latitude,
			r.Longitude,
			toPgDate(r.LastReportedDetection),
		}
	}
	return rows
}

func toPgDate(t time.Time) pgtype.Date {
	if t.IsZero() {
		return pgtype.Date{}
	}
	return pgtype.Date{Time: t, Valid: true}
}

// uuidString formats a pgtype.UUID, returning "" when it is NULL.
func uuidString(u pgtype.UUID) string {
	if !u.Valid {
		return ""
	}
	return uuid.UUID(u.Bytes).String()
}
