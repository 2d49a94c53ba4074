package service

// errors.go maps technical errors to user-facing messages with support codes.
//
// Codes by category:
//
//	PARSE001 malformed row          PARSE002 invalid csv quoting
//	VAL001   missing field          VAL002   invalid number
//	VAL003   invalid date format    VAL004   invalid date value
//	VAL005   missing affected totals
//	EXP001   export fetch failed    EXP002   export too large
//	DB001    database unreachable   DB002    database timeout
//	DB003    constraint violation   DB004    not initialized
//	AUTH001  missing credentials    AUTH002  invalid credentials
//	RUN001   too many runs          RUN002   run timed out
//	RUN003   run cancelled
//	RATE001  rate limited
//	ERR000   anything else
//
// Typed errors are recognised first through errors.Is and errors.As, so the
// code survives any amount of wrapping. Untyped errors fall back to
// case-insensitive substring patterns; the first match wins.

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/JonMunkholm/flockwatch/internal/csvparse"
	"github.com/JonMunkholm/flockwatch/internal/exporter"
	"github.com/JonMunkholm/flockwatch/internal/outbreak"
	"github.com/JonMunkholm/flockwatch/internal/store"
)

// Errors raised by the HTTP auth gate and rate limiter.
var (
	ErrMissingCredentials = errors.New("missing credentials")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrRateLimited        = errors.New("rate limit exceeded")
)

// UserMessage is what a caller may show to a person.
type UserMessage struct {
	Message string
	Action  string
	Code    string
}

var (
	msgMalformedRow = UserMessage{"The export has a row with the wrong number of columns", "The export layout may have changed; check the source dashboard", "PARSE001"}
	msgInvalidCSV   = UserMessage{"The export is not valid delimited text", "Re-download the export and try again", "PARSE002"}
	msgMissingField = UserMessage{"A required field is empty in the export", "Check that the export still contains every expected column", "VAL001"}
	msgInvalidNum   = UserMessage{"A numeric field could not be read", "Check the export for non-numeric counts or coordinates", "VAL002"}
	msgDateFormat   = UserMessage{"A detection date is missing from the export", "Check the last reported detection text", "VAL003"}
	msgDateValue    = UserMessage{"A detection date is not a real calendar date", "Check the last reported detection text", "VAL004"}
	msgNoTotals     = UserMessage{"The 30 day totals export has no data", "Re-download the affected totals export", "VAL005"}
	msgFetch        = UserMessage{"The export could not be downloaded", "Please try again later", "EXP001"}
	msgTooLarge     = UserMessage{"The export exceeds the size limit", "Raise EXPORT_MAX_BYTES if the export legitimately grew", "EXP002"}
	msgNotInit      = UserMessage{"The service has not been initialized", "Restart the server to create the report date record", "DB004"}
	msgMissingCred  = UserMessage{"Authorization is required", "Send an Authorization: Bearer header", "AUTH001"}
	msgInvalidCred  = UserMessage{"Authorization was rejected", "Check the auth id you are sending", "AUTH002"}
	msgTooManyRuns  = UserMessage{"A scrape is already running", "Please wait a moment and try again", "RUN001"}
	msgRunTimeout   = UserMessage{"The scrape timed out", "Please try again later", "RUN002"}
	msgRunCancelled = UserMessage{"The scrape was cancelled", "Please try again", "RUN003"}
	msgRateLimited  = UserMessage{"Too many requests", "Please wait a moment before trying again", "RATE001"}

	msgCheckViolation = UserMessage{"Stored data failed a consistency check", "Review the export for out of range values", "DB003"}
	msgDuplicateState = UserMessage{"The export lists the same state twice", "Review the export for duplicate states", "DB003"}
)

// Postgres SQLSTATE codes recognised on *pgconn.PgError.
const (
	pgUniqueViolation = "23505"
	pgCheckViolation  = "23514"
)

type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns catches errors that arrive without a type, typically from
// the database driver.
var errorPatterns = []errorPattern{
	{"connection refused", UserMessage{"Unable to connect to database", "Please try again in a few moments", "DB001"}},
	{"connection reset", UserMessage{"Database connection was interrupted", "Please try again", "DB001"}},
	{"timeout", UserMessage{"Database operation timed out", "Please try again later", "DB002"}},
	{"violates check constraint", msgCheckViolation},
	{"duplicate key", msgDuplicateState},
}

var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Please try again or contact support",
	Code:    "ERR000",
}

// MapError converts err to a user-facing message. A nil error maps to the
// zero UserMessage.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}
	if msg, ok := mapTyped(err); ok {
		return msg
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}
	return defaultMessage
}

func mapTyped(err error) (UserMessage, bool) {
	var (
		malformed *csvparse.MalformedRowError
		syntax    *csvparse.SyntaxError
		missing   *outbreak.MissingFieldError
		number    *outbreak.InvalidNumberError
		dateFmt   *outbreak.InvalidDateFormatError
		dateVal   *outbreak.InvalidDateValueError
		fetch     *exporter.FetchError
		pgErr     *pgconn.PgError
	)

	switch {
	case errors.As(err, &malformed):
		return msgMalformedRow, true
	case errors.As(err, &syntax):
		return msgInvalidCSV, true
	case errors.As(err, &missing):
		return msgMissingField, true
	case errors.As(err, &number):
		return msgInvalidNum, true
	case errors.As(err, &dateFmt):
		return msgDateFormat, true
	case errors.As(err, &dateVal):
		return msgDateValue, true
	case errors.Is(err, outbreak.ErrNoAffectedTotals):
		return msgNoTotals, true
	case errors.Is(err, exporter.ErrTooLarge):
		return msgTooLarge, true
	case errors.As(err, &fetch):
		return msgFetch, true
	case errors.Is(err, store.ErrNotInitialized):
		return msgNotInit, true
	case errors.As(err, &pgErr) && pgErr.Code == pgCheckViolation:
		return msgCheckViolation, true
	case errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation:
		return msgDuplicateState, true
	case errors.Is(err, ErrMissingCredentials):
		return msgMissingCred, true
	case errors.Is(err, ErrInvalidCredentials):
		return msgInvalidCred, true
	case errors.Is(err, ErrRateLimited):
		return msgRateLimited, true
	case errors.Is(err, ErrTooManyRuns):
		return msgTooManyRuns, true
	case errors.Is(err, context.DeadlineExceeded):
		return msgRunTimeout, true
	case errors.Is(err, context.Canceled):
		return msgRunCancelled, true
	}
	return UserMessage{}, false
}

// FormatUserError renders err as "Message (Code: XXX). Action".
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to something more specific than ERR000.
func IsUserFacing(err error) bool {
	return err != nil && MapError(err).Code != defaultMessage.Code
}
