// internal/util/util.go
package util

import (
	"os"
	"path/filepath"
	"strconv"
	"unicode/utf8"
)

// NotAvailable is shown wherever a value is missing.
const NotAvailable = "N/A"

// WriteFile writes data to a file with 0o644 permissions, creating parent
// directories as needed.
func WriteFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}

// FormatOptional renders v with the given decimals followed by unit, or N/A
// when v is nil.
func FormatOptional(v *float64, decimals int, unit string) string {
	if v == nil {
		return NotAvailable
	}
	s := strconv.FormatFloat(*v, 'f', decimals, 64)
	if unit == "" {
		return s
	}
	return s + " " + unit
}

// TruncateRunes truncates a string to a maximum number of runes,
// appending an ellipsis if truncated.
func TruncateRunes(text string, maxRunes int) string {
	if utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)
	return string(runes[:maxRunes]) + "…"
}
