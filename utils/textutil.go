package utils

import (
	"regexp"
	"strings"
)

var nonPrintable = regexp.MustCompile(`[^\x00-\x7FÀ-ÿ\s]`)

// SanitizeText strips characters the PDF core fonts cannot render.
// Keeps ASCII, whitespace and the common accented Latin range, and
// replaces em-dashes with a plain dash.
func SanitizeText(text string) string {
	text = strings.ReplaceAll(text, "—", "-")
	return nonPrintable.ReplaceAllString(text, "")
}

// SanitizePtr is SanitizeText for nullable columns; nil stays empty
func SanitizePtr(text *string) string {
	if text == nil {
		return ""
	}
	return SanitizeText(*text)
}
