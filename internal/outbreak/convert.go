package outbreak

// convert.go turns the export's text cells into typed values.
//
// The export formats numbers for a US locale ("3,685,424"), abbreviates large
// period totals with a magnitude suffix ("1.5M", "250K") and embeds dates in
// free text ("Last reported detection 12/27/2024.").

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// detectionDateRegex finds an M/D/YYYY token anywhere in the detection text.
var detectionDateRegex = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})`)

// stripThousands removes thousands separators and surrounding whitespace.
func stripThousands(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
}

// parseCount parses a non-negative whole number such as "3,685,424".
func parseCount(field, raw string) (int64, error) {
	n, err := strconv.ParseInt(stripThousands(raw), 10, 64)
	if err != nil {
		return 0, &InvalidNumberError{Field: field, Value: raw}
	}
	if n < 0 {
		return 0, &InvalidNumberError{Field: field, Value: raw, Reason: "must be non-negative"}
	}
	return n, nil
}

// parseCoordinate parses a latitude or longitude and checks it against limit.
func parseCoordinate(field, raw string, limit float64) (float64, error) {
	f, err := strconv.ParseFloat(stripThousands(raw), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, &InvalidNumberError{Field: field, Value: raw}
	}
	if f < -limit || f > limit {
		return 0, &InvalidNumberError{Field: field, Value: raw, Reason: "out of range"}
	}
	return f, nil
}

// parseMagnitude parses a period total that may carry a K or M suffix.
//
// Text that still fails to parse yields 0. Emptiness is checked by the caller
// before this point, so 0 only ever stands in for unreadable text. A value
// that does parse must fit a non-negative int64.
func parseMagnitude(field, raw string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "M"):
		multiplier = 1_000_000
		s = strings.TrimSuffix(s, "M")
	case strings.HasSuffix(s, "K"):
		multiplier = 1_000
		s = strings.TrimSuffix(s, "K")
	}

	f, err := strconv.ParseFloat(stripThousands(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, nil
	}

	v := math.Round(f * multiplier)
	switch {
	case v < 0:
		return 0, &InvalidNumberError{Field: field, Value: raw, Reason: "must be non-negative"}
	// float64(math.MaxInt64) rounds up to 2^63, which int64 cannot hold.
	case v >= float64(math.MaxInt64):
		return 0, &InvalidNumberError{Field: field, Value: raw, Reason: "out of range"}
	}
	return int64(v), nil
}

// extractDetectionDate pulls the M/D/YYYY date out of the detection text and
// returns it as midnight UTC.
//
// The date is rebuilt from its parts and compared back, so tokens such as
// 2/30/2025 that time.Date would silently normalize are rejected.
func extractDetectionDate(text string) (time.Time, error) {
	m := detectionDateRegex.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, &InvalidDateFormatError{Text: text}
	}

	month, _ := strconv.Atoi(m[1])
	day, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])

	date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if date.Year() != year || int(date.Month()) != month || date.Day() != day {
		return time.Time{}, &InvalidDateValueError{Text: text}
	}
	return date, nil
}
