package errors

import (
	"context"
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==========================
// Conversion Tests
// ==========================

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name          string
		err           *StandardError
		wantCode      string
		wantRetries   int
		wantRetryable bool
	}{
		{
			name:        "load not found is a business error",
			err:         NewLoadNotFoundError(42),
			wantCode:    "LOAD_NOT_FOUND",
			wantRetries: 0,
		},
		{
			name:        "invalid input is a business error",
			err:         NewInvalidMatchInputError("loadId is required"),
			wantCode:    "INVALID_MATCH_INPUT",
			wantRetries: 0,
		},
		{
			name:          "query execution retries three times",
			err:           NewQueryExecutionFailedError("eligible_carriers", stderrors.New("conn reset")),
			wantCode:      "QUERY_EXECUTION_FAILED",
			wantRetries:   3,
			wantRetryable: true,
		},
		{
			name:          "query timeout retries twice",
			err:           NewQueryTimeoutError("lane_deliveries"),
			wantCode:      "QUERY_TIMEOUT",
			wantRetries:   2,
			wantRetryable: true,
		},
		{
			name:     "unmapped code passes through",
			err:      NewInternalError(stderrors.New("boom")),
			wantCode: "INTERNAL_ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmn := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmn.Code)
			assert.Equal(t, tt.wantRetries, bpmn.Retries)
			assert.Equal(t, tt.wantRetryable, bpmn.Retryable)
			assert.Equal(t, string(tt.err.Code), bpmn.ErrorVariables["originalErrorCode"])
		})
	}
}

func TestConvertToBPMNError_CarriesMetadata(t *testing.T) {
	bpmn := ConvertToBPMNError(NewLoadNotFoundError(42))
	vars := bpmn.ToErrorVariables()

	assert.Equal(t, int64(42), vars["loadId"])
	assert.Equal(t, "LOAD_NOT_FOUND", vars["errorCode"])
	assert.Equal(t, "Load not found", vars["errorMessage"])
	assert.Equal(t, false, vars["retryable"])
}

func TestConvertToBPMNError_NonRetryableOverridesCount(t *testing.T) {
	err := NewQueryExecutionFailedError("load_by_id", stderrors.New("x"))
	err.Retryable = false
	assert.Equal(t, 0, ConvertToBPMNError(err).Retries)
}

// ==========================
// Classification Tests
// ==========================

func TestFromDataStoreError(t *testing.T) {
	t.Run("deadline becomes timeout", func(t *testing.T) {
		err := fmt.Errorf("eligible carriers: %w", context.DeadlineExceeded)
		assert.Equal(t, ErrCodeQueryTimeout, FromDataStoreError("eligible_carriers", err).Code)
	})

	t.Run("cancellation becomes timeout", func(t *testing.T) {
		assert.Equal(t, ErrCodeQueryTimeout, FromDataStoreError("venture_stats", context.Canceled).Code)
	})

	t.Run("other errors are execution failures", func(t *testing.T) {
		got := FromDataStoreError("venture_stats", stderrors.New("syntax error"))
		assert.Equal(t, ErrCodeQueryExecutionFailed, got.Code)
		assert.Contains(t, got.Details, "venture_stats")
	})

	t.Run("standard errors pass through", func(t *testing.T) {
		orig := NewLoadNotFoundError(7)
		got := FromDataStoreError("load_by_id", fmt.Errorf("wrapped: %w", orig))
		assert.Same(t, orig, got)
	})
}

func TestAsStandardError(t *testing.T) {
	orig := NewInvalidMatchInputError("bad")
	got, ok := AsStandardError(fmt.Errorf("ctx: %w", orig))
	require.True(t, ok)
	assert.Same(t, orig, got)

	_, ok = AsStandardError(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestWithMetadata(t *testing.T) {
	err := NewQueryTimeoutError("lane_deliveries").WithMetadata("loadId", int64(9))
	assert.Equal(t, int64(9), err.Metadata["loadId"])
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeQueryTimeout))
	assert.Equal(t, "DATABASE", GetErrorCategory(ErrCodeDatabaseConnectionFailed))
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodeLoadNotFound))
	assert.Equal(t, "NOT_FOUND", GetErrorCategory(ErrCodeActivityNotRegistered))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeInvalidMatchInput))
	assert.Equal(t, "EXTERNAL", GetErrorCategory(ErrCodeExternalService))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeQueryExecutionFailed))
	assert.True(t, IsRetryableErrorCode(ErrCodeExternalService))
	assert.False(t, IsRetryableErrorCode(ErrCodeLoadNotFound))
}
