package validator

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aretw0/eventstorm/pkg/domain"
)

var (
	// DefaultMaxInputSize bounds a single text argument. Import payloads are
	// checked separately by the caller.
	DefaultMaxInputSize = 8192
	// EnvMaxInputSize is the environment variable to override the default
	EnvMaxInputSize = "EVENTSTORM_MAX_INPUT_SIZE"
)

// Errors returned by SanitizeInput.
var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitize cleans free text by enforcing size limits, validating UTF-8,
// stripping control characters and trimming surrounding whitespace.
// Newlines, tabs and carriage returns are kept.
func Sanitize(input string) (string, error) {
	return sanitize(input, maxInputSize())
}

// SanitizeLimit is Sanitize with an explicit byte limit.
func SanitizeLimit(input string, limit int) (string, error) {
	return sanitize(input, limit)
}

func sanitize(input string, limit int) (string, error) {
	if len(input) > limit {
		// Rejected rather than truncated so stored text is never silently cut.
		return "", &domain.Error{
			Kind: domain.ErrValidationFailed,
			Msg:  fmt.Sprintf("size=%d limit=%d", len(input), limit),
			Err:  ErrInputTooLarge,
		}
	}
	if !utf8.ValidString(input) {
		return "", &domain.Error{Kind: domain.ErrValidationFailed, Err: ErrInvalidUTF8}
	}

	clean := true
	for _, r := range input {
		if unicode.IsControl(r) && !isSafeControl(r) {
			clean = false
			break
		}
	}
	if clean {
		return strings.TrimSpace(input), nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unicode.IsControl(r) || isSafeControl(r) {
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String()), nil
}

// SanitizeAll sanitizes every pointed-to string in place.
func SanitizeAll(fields ...*string) error {
	for _, f := range fields {
		if f == nil {
			continue
		}
		clean, err := Sanitize(*f)
		if err != nil {
			return err
		}
		*f = clean
	}
	return nil
}

// SanitizeSlice sanitizes every element of items in place.
func SanitizeSlice(items []string) error {
	for i := range items {
		clean, err := Sanitize(items[i])
		if err != nil {
			return err
		}
		items[i] = clean
	}
	return nil
}

func isSafeControl(r rune) bool {
	return r == '\n' || r == '\t' || r == '\r'
}

func maxInputSize() int {
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}
