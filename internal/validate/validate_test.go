package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/faqdesk/faqdesk/internal/errors"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"trims whitespace", "  hello  ", "hello"},
		{"collapses spaces", "a   b\t\tc", "a b c"},
		{"preserves newlines", "line one\nline  two", "line one\nline two"},
		{"strips nul bytes", "a\x00b", "ab"},
		{"strips control chars", "a\x01\x02b", "ab"},
		{"strips del", "a\x7fb", "ab"},
		{"strips c1 controls", "ab", "ab"},
		{"empty stays empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestQuery_EmptyRejected(t *testing.T) {
	_, err := Query("", 200)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeQueryEmpty, errors.GetCode(err))

	// Whitespace-only is empty after sanitization.
	_, err = Query("   \t ", 200)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeQueryEmpty, errors.GetCode(err))
}

func TestQuery_OverLengthRejectedNotTruncated(t *testing.T) {
	_, err := Query(strings.Repeat("q", 201), 200)
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeQueryTooLong, errors.GetCode(err))
	assert.True(t, errors.IsValidation(err))
}

func TestQuery_BoundaryAccepted(t *testing.T) {
	q, err := Query(strings.Repeat("q", 200), 200)
	require.NoError(t, err)
	assert.Len(t, q, 200)
}

func TestQuery_CountsRunesNotBytes(t *testing.T) {
	// 10 two-byte runes are within a 10-rune limit.
	q, err := Query(strings.Repeat("я", 10), 10)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("я", 10), q)
}

func TestQuestion_Bounds(t *testing.T) {
	_, err := Question("hi", 500)
	assert.True(t, errors.IsValidation(err), "below minimum length")

	_, err = Question(strings.Repeat("x", 501), 500)
	assert.True(t, errors.IsValidation(err), "above maximum length")

	got, err := Question("  How do I install Go?  ", 500)
	require.NoError(t, err)
	assert.Equal(t, "How do I install Go?", got)
}

func TestAnswer_Bounds(t *testing.T) {
	_, err := Answer("ok", 2000)
	assert.True(t, errors.IsValidation(err))

	got, err := Answer("Download it from go.dev and unpack.", 2000)
	require.NoError(t, err)
	assert.NotEmpty(t, got)
}
