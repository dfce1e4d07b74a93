package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBibleError_Unwrap_PreservesOriginalError(t *testing.T) {
	// Given: an original error
	originalErr := errors.New("original error")

	// When: wrapping with BibleError
	be := New(ErrCodeIOFailure, "failed to read bible_text.bin", originalErr)

	// Then: unwrapping returns original error
	require.NotNil(t, be)
	assert.Equal(t, originalErr, errors.Unwrap(be))
	assert.True(t, errors.Is(be, originalErr))
}

func TestBibleError_Error_ReturnsFormattedMessage(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		message  string
		expected string
	}{
		{
			name:     "config error",
			code:     ErrCodeConfigNotFound,
			message:  "config file not found",
			expected: "[ERR_101_CONFIG_NOT_FOUND] config file not found",
		},
		{
			name:     "asset error",
			code:     ErrCodeAssetNotFound,
			message:  "missal.bin not found",
			expected: "[ERR_201_ASSET_NOT_FOUND] missal.bin not found",
		},
		{
			name:     "validation error",
			code:     ErrCodeInvalidReference,
			message:  "unknown book",
			expected: "[ERR_401_INVALID_REFERENCE] unknown book",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, nil)
			assert.Equal(t, tt.expected, err.Error())
		})
	}
}

func TestBibleError_Is_MatchesByCode(t *testing.T) {
	err1 := FormatInvalid("a.bin", "bad magic")
	err2 := FormatInvalid("b.bin", "bad version")

	assert.True(t, errors.Is(err1, err2))
	assert.False(t, errors.Is(err1, NotFound("a.bin", nil)))
}

func TestBibleError_WithDetails_AddsContext(t *testing.T) {
	err := New(ErrCodeAssetNotFound, "asset not found", nil).
		WithDetail("root", "/apps_data/bible").
		WithDetail("asset", "verse_index.bin")

	assert.Equal(t, "/apps_data/bible", err.Details["root"])
	assert.Equal(t, "verse_index.bin", err.Details["asset"])
}

func TestBibleError_CategoryFromCode(t *testing.T) {
	tests := []struct {
		code         string
		wantCategory Category
	}{
		{ErrCodeConfigNotFound, CategoryConfig},
		{ErrCodeConfigInvalid, CategoryConfig},
		{ErrCodeAssetNotFound, CategoryAsset},
		{ErrCodeBoundsViolation, CategoryAsset},
		{ErrCodeInvalidQuery, CategoryValidation},
		{ErrCodeInternal, CategoryInternal},
		{"bogus", CategoryInternal},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			err := New(tt.code, "test message", nil)
			assert.Equal(t, tt.wantCategory, err.Category)
		})
	}
}

func TestBibleError_KindFromCode(t *testing.T) {
	tests := []struct {
		code     string
		wantKind Kind
	}{
		{ErrCodeAssetNotFound, KindNotFound},
		{ErrCodeFormatInvalid, KindFormatInvalid},
		{ErrCodeBoundsViolation, KindBoundsViolation},
		{ErrCodeAllocationFailed, KindAllocationFailure},
		{ErrCodeIOFailure, KindIOFailure},
		{ErrCodeConfigInvalid, KindOther},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.wantKind, New(tt.code, "x", nil).Kind)
		})
	}
}

func TestBibleError_SeverityFromCode(t *testing.T) {
	assert.Equal(t, SeverityWarning, NotFound("x", nil).Severity)
	assert.Equal(t, SeverityError, FormatInvalid("x", "y").Severity)
}

func TestKindOf_WrappedError(t *testing.T) {
	// Given: a bounds error wrapped by fmt.Errorf
	inner := BoundsViolation("shard_001.bin", "ref list overruns blob")
	wrapped := fmt.Errorf("lookup: %w", inner)

	// Then: the kind survives wrapping
	assert.Equal(t, KindBoundsViolation, KindOf(wrapped))
	assert.Equal(t, ErrCodeBoundsViolation, GetCode(wrapped))
	assert.Equal(t, CategoryAsset, GetCategory(wrapped))
}

func TestKindOf_PlainAndNil(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindIOFailure, KindOf(errors.New("disk on fire")))
	assert.True(t, IsNotFound(NotFound("x", nil)))
	assert.False(t, IsNotFound(errors.New("x")))
}

func TestAllocationFailure_Message(t *testing.T) {
	err := AllocationFailure("shard_003.bin", 600000, 524288)

	assert.Equal(t, KindAllocationFailure, err.Kind)
	assert.Contains(t, err.Message, "600000")
	assert.Contains(t, err.Message, "524288")
}

func TestWrap_NilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(ErrCodeInternal, nil))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "bounds_violation", KindBoundsViolation.String())
	assert.Equal(t, "other", KindOther.String())
}
