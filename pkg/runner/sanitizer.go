package runner

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	// DefaultMaxInputSize bounds one visitor answer in bytes. The longest valid field,
	// an e-mail address, fits well within it.
	DefaultMaxInputSize = 512
	// EnvMaxInputSize overrides the limit when no explicit size is configured.
	EnvMaxInputSize = "LEADCHAT_MAX_INPUT_SIZE"
)

var (
	ErrInputTooLarge = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8   = errors.New("input contains invalid UTF-8 sequences")
)

// Sanitizer turns one raw line into a single-line chat answer.
type Sanitizer struct {
	// MaxSize is the byte limit. Zero falls back to EnvMaxInputSize, then DefaultMaxInputSize.
	MaxSize int
}

// Clean trims the line, rejects oversized or malformed input and folds it into one line:
// whitespace runs become a single space, other control and format characters are dropped.
// Format characters cover zero-width and bidi marks that would hide inside a name or e-mail.
func (s Sanitizer) Clean(input string) (string, error) {
	input = strings.TrimSpace(input)
	limit := s.limit()
	if len(input) > limit {
		// Rejected rather than truncated: a cut e-mail would still validate.
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrInputTooLarge, len(input), limit)
	}
	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	var b strings.Builder
	b.Grow(len(input))
	space := false
	for _, r := range input {
		switch {
		case unicode.IsSpace(r):
			space = true
		case unicode.IsControl(r), unicode.Is(unicode.Cf, r):
		default:
			if space && b.Len() > 0 {
				b.WriteByte(' ')
			}
			space = false
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

func (s Sanitizer) limit() int {
	if s.MaxSize > 0 {
		return s.MaxSize
	}
	if val := os.Getenv(EnvMaxInputSize); val != "" {
		if size, err := strconv.Atoi(val); err == nil && size > 0 {
			return size
		}
	}
	return DefaultMaxInputSize
}

// SanitizeInput cleans input with the default limits.
func SanitizeInput(input string) (string, error) {
	return Sanitizer{}.Clean(input)
}
