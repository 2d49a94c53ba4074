// Package csvparse tokenizes delimited text exports into rows of named fields.
//
// The parser knows nothing about the meaning of the columns. Callers supply
// the delimiter, the line to start reading from and either an explicit list
// of header names (applied positionally) or a request to take the header names
// from the first line that is read.
//
// Quoted fields follow RFC 4180: a quoted field may contain the delimiter,
// doubled quotes and line breaks.
package csvparse

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Row maps a header name to the raw value of that column for one record.
type Row map[string]string

// Headers selects where the field names for each row come from.
type Headers struct {
	// Names are applied positionally to every data row. Any header row still
	// present in the text is treated as data unless StartRow skips it.
	Names []string

	// FromFirstRow takes the field names from the first line read.
	FromFirstRow bool
}

// Columns returns Headers that apply the given names positionally.
func Columns(names ...string) Headers {
	return Headers{Names: names}
}

// FirstRow returns Headers that read the field names from the first line.
func FirstRow() Headers {
	return Headers{FromFirstRow: true}
}

// Options configures a single Parse call.
type Options struct {
	// Delimiter separates fields. Defaults to ','.
	Delimiter rune

	// StartRow is the 1-based record to start reading from. Records before
	// it (titles, captions, the export's own header row) are skipped. A
	// quoted line break stays inside its record and blank lines are not
	// counted. Skipped records are read with lazy quoting, so a stray quote
	// in a caption is not an error. Values below 1 are treated as 1.
	StartRow int

	Headers Headers
}

// ErrNoHeaders is returned when neither explicit names nor FromFirstRow are set.
var ErrNoHeaders = errors.New("csvparse: no headers configured")

// MalformedRowError reports a data row whose field count differs from the
// number of headers.
type MalformedRowError struct {
	Line     int // 1-based line in the source text
	Expected int
	Actual   int
}

func (e *MalformedRowError) Error() string {
	return fmt.Sprintf("invalid record length: expected %d, got %d on line %d", e.Expected, e.Actual, e.Line)
}

// SyntaxError reports quoting problems found while tokenizing.
type SyntaxError struct {
	Line int
	Err  error
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("invalid csv on line %d: %v", e.Line, e.Err)
}

func (e *SyntaxError) Unwrap() error {
	return e.Err
}

// Parse tokenizes text into rows in source order.
//
// Empty or whitespace-only text yields an empty slice. Field values are
// trimmed of surrounding whitespace and rows whose fields are all blank are
// skipped. Parse has no side effects; identical input gives identical output.
func Parse(text string, opts Options) ([]Row, error) {
	rows := []Row{}

	text = strings.TrimPrefix(text, "\ufeff")
	if strings.TrimSpace(text) == "" {
		return rows, nil
	}

	if !opts.Headers.FromFirstRow && len(opts.Headers.Names) == 0 {
		return nil, ErrNoHeaders
	}

	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = ','
	}

	body, lineOffset, err := skipRecords(text, delimiter, opts.StartRow-1)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(body) == "" {
		return rows, nil
	}

	r := csv.NewReader(strings.NewReader(body))
	r.Comma = delimiter
	r.FieldsPerRecord = -1

	headers := opts.Headers.Names
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &SyntaxError{Line: pe.StartLine + lineOffset, Err: pe.Err}
			}
			return nil, err
		}

		line, _ := r.FieldPos(0)
		line += lineOffset

		if isBlank(record) {
			continue
		}

		if headers == nil {
			headers, err = headerNames(record, line)
			if err != nil {
				return nil, err
			}
			continue
		}

		if len(record) != len(headers) {
			return nil, &MalformedRowError{Line: line, Expected: len(headers), Actual: len(record)}
		}

		row := make(Row, len(headers))
		for i, name := range headers {
			row[name] = strings.TrimSpace(record[i])
		}
		rows = append(rows, row)
	}

	return rows, nil
}

// ParsePairs reads one key/value pair per line, split on the first delimiter.
// Lines without a delimiter map the whole line to an empty value. Later
// duplicate keys overwrite earlier ones.
func ParsePairs(text string, delimiter rune) map[string]string {
	pairs := make(map[string]string)

	text = strings.TrimSpace(strings.TrimPrefix(text, "\ufeff"))
	if text == "" {
		return pairs
	}

	sep := string(delimiter)
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSuffix(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		key, value, _ := strings.Cut(line, sep)
		if first, _, found := strings.Cut(value, sep); found {
			value = first
		}
		pairs[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	return pairs
}

// skipRecords drops the first n records of text. It returns the rest of the
// text and the number of source lines consumed, so later line numbers still
// point into the original text.
func skipRecords(text string, delimiter rune, n int) (string, int, error) {
	if n <= 0 {
		return text, 0, nil
	}

	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	for i := 0; i < n; i++ {
		if _, err := r.Read(); err != nil {
			if err == io.EOF {
				return "", 0, nil
			}
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return "", 0, &SyntaxError{Line: pe.StartLine, Err: pe.Err}
			}
			return "", 0, err
		}
	}

	offset := r.InputOffset()
	return text[offset:], strings.Count(text[:offset], "\n"), nil
}

func headerNames(record []string, line int) ([]string, error) {
	names := make([]string, len(record))
	seen := make(map[string]bool, len(record))
	for i, h := range record {
		h = strings.TrimSpace(h)
		if seen[h] {
			return nil, fmt.Errorf("duplicate header %q on line %d", h, line)
		}
		seen[h] = true
		names[i] = h
	}
	return names, nil
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
