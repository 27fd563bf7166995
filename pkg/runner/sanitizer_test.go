package runner_test

import (
	"strings"
	"testing"

	"github.com/aretw0/leadchat/pkg/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizer_SizeLimit(t *testing.T) {
	s := runner.Sanitizer{MaxSize: 64}

	tests := []struct {
		name      string
		inputSize int
		wantErr   bool
	}{
		{"Under Limit", 63, false},
		{"Exact Limit", 64, false},
		{"Over Limit", 65, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Clean(strings.Repeat("a", tt.inputSize))
			if tt.wantErr {
				assert.ErrorIs(t, err, runner.ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSanitizer_SizeIsMeasuredAfterTrim(t *testing.T) {
	got, err := runner.Sanitizer{MaxSize: 5}.Clean("   Maria   ")
	require.NoError(t, err)
	assert.Equal(t, "Maria", got)
}

func TestSanitizer_FoldsToOneLine(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Maria Silva", "Maria Silva"},
		{"Whitespace Runs", "Maria \t\r\n  Silva", "Maria Silva"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"}, // ESC removed
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
		{"Zero Width", "maria\u200b@example.com", "maria@example.com"},
		{"Bidi Override", "\u202emaria@example.com", "maria@example.com"},
		{"Accents Kept", "José Conceição", "José Conceição"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := runner.SanitizeInput(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizer_EnvOverride(t *testing.T) {
	t.Setenv(runner.EnvMaxInputSize, "10")

	_, err := runner.SanitizeInput("12345678901")
	assert.ErrorIs(t, err, runner.ErrInputTooLarge)

	_, err = runner.SanitizeInput("12345")
	assert.NoError(t, err)

	_, err = runner.Sanitizer{MaxSize: 20}.Clean("12345678901")
	assert.NoError(t, err, "an explicit limit wins over the environment")
}

func TestSanitizer_InvalidUTF8(t *testing.T) {
	_, err := runner.SanitizeInput("\xbd\xb2\x3d\xbc\x20\xe2\x8c\x98")
	assert.ErrorIs(t, err, runner.ErrInvalidUTF8)
}
