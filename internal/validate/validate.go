// Package validate provides input validation and sanitization for user-
// supplied text: search queries, question text, and answer text.
package validate

import (
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/faqdesk/faqdesk/internal/errors"
)

// MinTextLength is the minimum length for question and answer text.
const MinTextLength = 3

// Sanitize normalizes user text: trims surrounding whitespace, removes NUL
// and control characters (except newline and tab), and collapses runs of
// spaces while preserving line breaks.
func Sanitize(text string) string {
	if text == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.TrimSpace(text) {
		// unicode.IsControl covers DEL and the C1 range, not just C0.
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}

	lines := strings.Split(b.String(), "\n")
	for i, line := range lines {
		lines[i] = strings.Join(strings.Fields(line), " ")
	}
	return strings.Join(lines, "\n")
}

// Query validates a search query against the configured maximum length.
// The query is sanitized first; an empty or over-length query is rejected
// outright before any embedding or ranking work happens.
func Query(raw string, maxLength int) (string, error) {
	q := Sanitize(raw)
	if q == "" {
		return "", errors.ValidationError(errors.ErrCodeQueryEmpty, "query is empty")
	}
	if n := utf8.RuneCountInString(q); n > maxLength {
		return "", errors.ValidationError(errors.ErrCodeQueryTooLong,
			"query exceeds maximum length").
			WithDetail("length", strconv.Itoa(n)).
			WithDetail("max_length", strconv.Itoa(maxLength))
	}
	return q, nil
}

// Question validates and sanitizes question text.
func Question(raw string, maxLength int) (string, error) {
	return boundedText(raw, maxLength, "question")
}

// Answer validates and sanitizes answer text.
func Answer(raw string, maxLength int) (string, error) {
	return boundedText(raw, maxLength, "answer")
}

func boundedText(raw string, maxLength int, field string) (string, error) {
	text := Sanitize(raw)
	n := utf8.RuneCountInString(text)
	if n < MinTextLength {
		return "", errors.ValidationError(errors.ErrCodeInvalidInput,
			field+" is too short").WithDetail("field", field)
	}
	if n > maxLength {
		return "", errors.ValidationError(errors.ErrCodeInvalidInput,
			field+" exceeds maximum length").
			WithDetail("field", field).
			WithDetail("length", strconv.Itoa(n)).
			WithDetail("max_length", strconv.Itoa(maxLength))
	}
	return text, nil
}
