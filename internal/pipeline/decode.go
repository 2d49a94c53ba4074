package pipeline

import (
	"fmt"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Decode converts a raw export to text.
//
// Exports are UTF-16 little endian. A leading byte order mark overrides that
// default, so UTF-16BE and UTF-8 files carrying a BOM are decoded too. The BOM
// itself is dropped.
func Decode(raw []byte) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}

	dec := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder())
	out, _, err := transform.Bytes(dec, raw)
	if err != nil {
		return "", fmt.Errorf("decode export: %w", err)
	}
	return string(out), nil
}
