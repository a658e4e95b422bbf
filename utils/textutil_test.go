package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeText(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain ascii untouched", "Via Roma 1, Milano", "Via Roma 1, Milano"},
		{"accented latin kept", "Cefalù, Forlì", "Cefalù, Forlì"},
		{"em-dash replaced", "Store A — north wing", "Store A - north wing"},
		{"emoji stripped", "fridge 🧊 broken", "fridge  broken"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeText(tt.input))
		})
	}
}

func TestSanitizePtr(t *testing.T) {
	assert.Equal(t, "", SanitizePtr(nil))

	s := "Store A — annex"
	assert.Equal(t, "Store A - annex", SanitizePtr(&s))
}
