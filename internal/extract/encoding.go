package extract

import (
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// decode converts raw file bytes to text. UTF-8 is tried first, then
// Windows-1252, then Latin-1. Latin-1 maps every byte, so decode only fails
// on empty input.
func decode(raw []byte) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	if utf8.Valid(raw) {
		return string(raw), true
	}
	if s, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil {
		return string(s), true
	}
	s, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", false
	}
	return string(s), true
}
