package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DerivesCategoryFromCode(t *testing.T) {
	tests := []struct {
		code     string
		category Category
	}{
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeVectorCorrupt, CategoryStorage},
		{ErrCodeModelUnavailable, CategoryModel},
		{ErrCodeQueryEmpty, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "boom", nil)
			assert.Equal(t, tt.category, err.Category)
		})
	}
}

func TestFaqError_ErrorFormat(t *testing.T) {
	err := New(ErrCodeQueryEmpty, "query is empty", nil)
	assert.Equal(t, "[ERR_401_QUERY_EMPTY] query is empty", err.Error())
}

func TestFaqError_UnwrapPreservesCause(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := ModelUnavailable("embedder unreachable", cause)

	assert.ErrorIs(t, err, cause)
}

func TestFaqError_IsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("search: %w", ModelUnavailable("load failed", nil))

	assert.True(t, stderrors.Is(err, New(ErrCodeModelUnavailable, "", nil)))
	assert.False(t, stderrors.Is(err, New(ErrCodeQueryEmpty, "", nil)))
}

func TestCategoryPredicates(t *testing.T) {
	// Given: errors wrapped deeper in a chain
	model := fmt.Errorf("stage: %w", ModelUnavailable("timeout", nil))
	valid := fmt.Errorf("input: %w", ValidationError(ErrCodeQueryTooLong, "too long"))
	corrupt := fmt.Errorf("read: %w", StorageCorruption("bad blob", nil))

	// Then: predicates see through the wrapping
	assert.True(t, IsModelUnavailable(model))
	assert.False(t, IsModelUnavailable(valid))

	assert.True(t, IsValidation(valid))
	assert.False(t, IsValidation(model))

	assert.True(t, IsStorageCorruption(corrupt))
	assert.False(t, IsStorageCorruption(valid))
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(ModelUnavailable("down", nil)))
	assert.False(t, IsRetryable(ValidationError(ErrCodeQueryEmpty, "empty")))
	assert.False(t, IsRetryable(stderrors.New("plain")))
}

func TestWrap_NilReturnsNil(t *testing.T) {
	require.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestWithDetail(t *testing.T) {
	err := StorageCorruption("bad length", nil).
		WithDetail("entry_id", "abc").
		WithDetail("blob_len", "17")

	assert.Equal(t, "abc", err.Details["entry_id"])
	assert.Equal(t, "17", err.Details["blob_len"])
}
