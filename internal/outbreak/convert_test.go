package outbreak

import (
	"errors"
	"testing"
	"time"
)

// ----------------------------------------------------------------------------
// parseCount Tests
// ----------------------------------------------------------------------------

func TestParseCount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    int64
		wantErr bool
	}{
		{name: "plain", input: "19", want: 19},
		{name: "thousands separators", input: "3,685,424", want: 3685424},
		{name: "surrounding whitespace", input: "  42 ", want: 42},
		{name: "zero", input: "0", want: 0},
		{name: "words", input: "Twenty", wantErr: true},
		{name: "decimal", input: "1.5", wantErr: true},
		{name: "negative", input: "-3", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCount(FieldBirdsAffected, tt.input)
			if tt.wantErr {
				var ne *InvalidNumberError
				if !errors.As(err, &ne) {
					t.Fatalf("parseCount(%q) error = %v, want *InvalidNumberError", tt.input, err)
				}
				if ne.Field != FieldBirdsAffected {
					t.Errorf("Field = %q, want %q", ne.Field, FieldBirdsAffected)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseCount(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseCount(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseCoordinate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		limit   float64
		want    float64
		wantErr bool
	}{
		{name: "latitude", input: "44.947205162", limit: 90, want: 44.947205162},
		{name: "negative longitude", input: "-90.336235388", limit: 180, want: -90.336235388},
		{name: "boundary", input: "90", limit: 90, want: 90},
		{name: "out of range", input: "91.5", limit: 90, wantErr: true},
		{name: "not a number", input: "north", limit: 90, wantErr: true},
		{name: "NaN literal", input: "NaN", limit: 90, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseCoordinate(FieldLatitude, tt.input, tt.limit)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseCoordinate(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("parseCoordinate(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// parseMagnitude Tests
// ----------------------------------------------------------------------------

func TestParseMagnitude(t *testing.T) {
	tests := []struct {
		input string
		want  int64
	}{
		{"1.5M", 1500000},
		{"250K", 250000},
		{"2m", 2000000},
		{"37", 37},
		{"1,234", 1234},
		{" 12.3K ", 12300},
		{"-0", 0},
		{"lots", 0},
		{"K", 0},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := parseMagnitude("Birds", tt.input)
			if err != nil {
				t.Fatalf("parseMagnitude(%q) error = %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("parseMagnitude(%q) = %d, want %d", tt.input, got, tt.want)
			}
		})
	}
}

func TestParseMagnitude_OutOfRange(t *testing.T) {
	tests := []struct {
		input  string
		reason string
	}{
		{"-1.5M", "must be non-negative"},
		{"-3K", "must be non-negative"},
		{"-25", "must be non-negative"},
		{"1e30M", "out of range"},
		{"9223372036854775807", "out of range"},
		{"Inf", "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, err := parseMagnitude("Birds", tt.input)
			var ne *InvalidNumberError
			if !errors.As(err, &ne) {
				t.Fatalf("parseMagnitude(%q) error = %v, want *InvalidNumberError", tt.input, err)
			}
			if ne.Field != "Birds" || ne.Reason != tt.reason {
				t.Errorf("got field=%q reason=%q, want field=%q reason=%q", ne.Field, ne.Reason, "Birds", tt.reason)
			}
		})
	}
}

// ----------------------------------------------------------------------------
// extractDetectionDate Tests
// ----------------------------------------------------------------------------

func TestExtractDetectionDate(t *testing.T) {
	tests := []struct {
		name       string
		text       string
		want       time.Time
		wantFormat bool
		wantValue  bool
	}{
		{
			name: "sentence",
			text: "Last reported detection 12/27/2024.",
			want: time.Date(2024, 12, 27, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "single digit parts",
			text: "detected 1/5/2025 in backyard flock",
			want: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC),
		},
		{
			name: "leap day",
			text: "2/29/2024",
			want: time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC),
		},
		{name: "no date", text: "Last reported detection.", wantFormat: true},
		{name: "two digit year", text: "12/27/24", wantFormat: true},
		{name: "february 30", text: "Last reported detection 2/30/2025.", wantValue: true},
		{name: "month 13", text: "13/01/2025", wantValue: true},
		{name: "not a leap year", text: "2/29/2025", wantValue: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractDetectionDate(tt.text)
			switch {
			case tt.wantFormat:
				var fe *InvalidDateFormatError
				if !errors.As(err, &fe) {
					t.Fatalf("error = %v, want *InvalidDateFormatError", err)
				}
				if fe.Text != tt.text {
					t.Errorf("Text = %q, want %q", fe.Text, tt.text)
				}
			case tt.wantValue:
				var ve *InvalidDateValueError
				if !errors.As(err, &ve) {
					t.Fatalf("error = %v, want *InvalidDateValueError", err)
				}
				if ve.Text != tt.text {
					t.Errorf("Text = %q, want %q", ve.Text, tt.text)
				}
			default:
				if err != nil {
					t.Fatalf("error = %v", err)
				}
				if !got.Equal(tt.want) || got.Location() != time.UTC {
					t.Errorf("got %v, want %v", got, tt.want)
				}
			}
		})
	}
}
