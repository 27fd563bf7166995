package validate_test

import (
	"strings"
	"testing"

	"github.com/aretw0/leadchat/pkg/domain"
	"github.com/aretw0/leadchat/pkg/validate"
	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Simple", "João", true},
		{"Full name", "Maria da Silva", true},
		{"Accented", "Ângela Côrtes", true},
		{"Trimmed", "  Li  ", true},
		{"Digit inside", "Jo3ão", false},
		{"Too short", "A", false},
		{"Too short after trim", "  A ", false},
		{"Max length", strings.Repeat("a", 50), true},
		{"Too long", strings.Repeat("a", 51), false},
		{"Punctuation", "Ana-Maria", false},
		{"Empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.Name(tt.input))
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"Simple", "maria@example.com", true},
		{"Upper case trimmed", "  Maria@Example.COM ", true},
		{"Plus tag", "ana+leads@mail.com.br", true},
		{"Short TLD", "a@b.c", false},
		{"No at", "maria.example.com", false},
		{"No TLD", "maria@example", false},
		{"Leading dot", ".maria@example.com", false},
		{"Trailing dot", "maria.@example.com", false},
		{"Double dot", "ma..ria@example.com", false},
		{"Local too long", strings.Repeat("a", 65) + "@example.com", false},
		{"Local at limit", strings.Repeat("a", 64) + "@example.com", true},
		{"Domain too long", "a@" + strings.Repeat("b", 253) + ".com", false},
		{"Space inside", "ma ria@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.Email(tt.input))
		})
	}
}

func TestPhone(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"11999998888", true},
		{"(11) 99999-8888", true},
		{"1133334444", true},
		{"+55 11 99999-8888", false},
		{"119999", false},
		{"", false},
		{"abc", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.Phone(tt.input))
		})
	}
}

func TestFormatPhone(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"1", "1"},
		{"11", "11"},
		{"119", "(11) 9"},
		{"119999", "(11) 9999"},
		{"1199999", "(11) 99999"},
		{"11999998", "(11) 99999-8"},
		{"1133334444", "(11) 33334-444"},
		{"11999998888", "(11) 99999-8888"},
		{"(11) 99999-8888", "(11) 99999-8888"},
		{"119999988889999", "(11) 99999-8888"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, validate.FormatPhone(tt.input))
		})
	}
}

func TestByKind(t *testing.T) {
	assert.True(t, validate.ByKind(domain.FieldName, "Ana"))
	assert.False(t, validate.ByKind(domain.FieldEmail, "nope"))
	assert.True(t, validate.ByKind(domain.FieldPhone, "11 99999 8888"))
	assert.True(t, validate.ByKind(domain.Field("free"), "anything"), "unknown kinds accept input")
	assert.False(t, validate.Known(domain.Field("free")))
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "Maria Silva", validate.Normalize(domain.FieldName, "  Maria Silva "))
	assert.Equal(t, "maria@example.com", validate.Normalize(domain.FieldEmail, " Maria@Example.com "))
	assert.Equal(t, "11999998888", validate.Normalize(domain.FieldPhone, "(11) 99999-8888"))
	assert.Equal(t, "(11) 99999-8888", validate.Display(domain.FieldPhone, "11999998888"))
}
