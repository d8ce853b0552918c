package util

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeForLog(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain vehicle interest", "Dacia Duster 4x4", "Dacia Duster 4x4"},
		{"diacritics untouched", "Škoda Superb, buget 15.000 €", "Škoda Superb, buget 15.000 €"},
		{"multi-line message", "Salut,\r\nCaut un SUV\nmersi", "Salut, Caut un SUV mersi"},
		{"forged log line", "x\n{\"level\":\"error\"}", "x {\"level\":\"error\"}"},
		{"control run collapses", "a\x00\x01\x1f\tb", "a b"},
		{"DEL", "a\x7fb", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeForLog(tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "Volks", Truncate("Volkswagen", 5))
	assert.Equal(t, "BMW", Truncate("BMW", 5))
	assert.Equal(t, "BMW", Truncate("BMW", -1))

	// "Š" is two bytes; cutting inside it backs off to the previous rune
	got := Truncate("Škoda", 1)
	assert.Equal(t, "", got)
	got = Truncate("Braşov Škoda", 8)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "Braşov ", got)
}

func TestMaskContact(t *testing.T) {
	tests := map[string]string{
		"":                      "",
		"  ion@example.ro  ":    "i***@example.ro",
		"Ștefan@example.ro":     "Ș***@example.ro",
		"+40 722 123 456":       "***456",
		"0722":                  "***",
		"telefon: 0722 123 45ă": "***45ă",
	}
	for in, want := range tests {
		got := MaskContact(in)
		assert.Equal(t, want, got, "MaskContact(%q)", in)
		assert.True(t, utf8.ValidString(got))
	}
}
