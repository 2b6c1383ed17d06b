package errors

import (
	"math"
	"strings"
	"unicode"
)

// maxFieldNameLength bounds key and series names.
const maxFieldNameLength = 256

// ValidateFieldName validates a record field name used as the category key
// or as a series name.
//
// The rules are conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateFieldName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidField, "field name cannot be empty")
	}
	if len(name) > maxFieldNameLength {
		return New(ErrCodeInvalidField, "field name too long (max %d characters)", maxFieldNameLength)
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidField, "field name contains invalid control characters")
		}
	}
	return nil
}

// ValidateSeries checks that every series name is valid and unique.
// An empty series list is valid.
func ValidateSeries(series []string) error {
	seen := make(map[string]struct{}, len(series))
	for _, s := range series {
		if err := ValidateFieldName(s); err != nil {
			return Wrap(ErrCodeInvalidField, err, "series %q", s)
		}
		if _, dup := seen[s]; dup {
			return New(ErrCodeInvalidField, "duplicate series %q", s)
		}
		seen[s] = struct{}{}
	}
	return nil
}

// ValidateDimensions checks the outer chart size.
// Both dimensions must be finite and positive.
func ValidateDimensions(width, height float64) error {
	for _, v := range []float64{width, height} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
			return New(ErrCodeInvalidDimensions, "chart size must be positive, got %gx%g", width, height)
		}
	}
	return nil
}

// ValidateOutputPath validates a file path for chart output.
// It rejects empty paths and paths with null bytes or control characters.
func ValidateOutputPath(path string) error {
	if strings.TrimSpace(path) == "" {
		return New(ErrCodeInvalidInput, "output path cannot be empty")
	}
	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "output path contains invalid characters")
		}
	}
	return nil
}
