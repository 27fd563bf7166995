// Package validate holds the pure field validators and formatters used by the chat flow.
package validate

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/aretw0/leadchat/pkg/domain"
)

const (
	minNameLen = 2
	maxNameLen = 50

	maxLocalLen  = 64
	maxDomainLen = 255
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Name accepts 2 to 50 letters (accented Latin included) and spaces after trimming.
func Name(value string) bool {
	trimmed := strings.TrimSpace(value)
	n := 0
	for _, r := range trimmed {
		if !isNameRune(r) {
			return false
		}
		n++
	}
	return n >= minNameLen && n <= maxNameLen
}

// isNameRune mirrors the class [a-zA-ZÀ-ÿ\s].
func isNameRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		return true
	case r >= 'À' && r <= 'ÿ':
		return true
	case unicode.IsSpace(r):
		return true
	}
	return false
}

// Email accepts local@domain.tld with a TLD of at least two letters.
// The local part is at most 64 characters and may not start or end with a period
// or contain consecutive periods; the domain is at most 255 characters.
func Email(value string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(value))
	if !emailPattern.MatchString(trimmed) {
		return false
	}

	local, domainPart, _ := strings.Cut(trimmed, "@")
	if len(local) > maxLocalLen || len(domainPart) > maxDomainLen {
		return false
	}
	if strings.HasPrefix(local, ".") || strings.HasSuffix(local, ".") || strings.Contains(local, "..") {
		return false
	}
	return true
}

// Phone accepts 10 or 11 digits once every non-digit is stripped.
func Phone(value string) bool {
	n := len(Digits(value))
	return n == 10 || n == 11
}

// Digits strips every non-digit character.
func Digits(value string) string {
	var b strings.Builder
	for _, r := range value {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ByKind runs the validator registered for kind.
// Kinds without a validator accept any value.
func ByKind(kind domain.Field, value string) bool {
	switch kind {
	case domain.FieldName:
		return Name(value)
	case domain.FieldEmail:
		return Email(value)
	case domain.FieldPhone:
		return Phone(value)
	}
	return true
}

// Known reports whether kind has a validator.
func Known(kind domain.Field) bool {
	return kind.IsIdentity()
}

// Normalize returns the stored form of a value: names trimmed, e-mails trimmed
// and lower-cased, phones as digits only.
func Normalize(kind domain.Field, value string) string {
	switch kind {
	case domain.FieldEmail:
		return strings.ToLower(strings.TrimSpace(value))
	case domain.FieldPhone:
		return Digits(value)
	}
	return strings.TrimSpace(value)
}

// Display returns the form of a value echoed back in the chat.
func Display(kind domain.Field, value string) string {
	if kind == domain.FieldPhone {
		return FormatPhone(value)
	}
	return Normalize(kind, value)
}

// FormatPhone progressively masks digits into the (DD) DDDDD-DDDD shape.
// Digits past the eleventh are dropped.
func FormatPhone(value string) string {
	d := Digits(value)
	switch {
	case len(d) <= 2:
		return d
	case len(d) <= 7:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 11:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
	return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:11]
}
