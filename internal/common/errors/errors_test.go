// internal/common/errors/errors_test.go
package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	messages []string
	fields   []map[string]interface{}
}

func (l *recordingLogger) Error(msg string, fields map[string]interface{}) {
	l.messages = append(l.messages, msg)
	l.fields = append(l.fields, fields)
}

func job(retries int32) entities.Job {
	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                42,
		Type:               "idea-lab.generate-roadmap",
		ProcessInstanceKey: 420,
		Retries:            retries,
		Variables:          "{}",
	}}
}

func TestGetRetryCount(t *testing.T) {
	tests := []struct {
		code ErrorCode
		want int
	}{
		{ErrCodeGenerationFailed, 3},
		{ErrCodeBackendFailed, 3},
		{ErrCodeInvalidPayload, 2},
		{ErrCodeGenerationTimeout, 1},
		{ErrCodeGenerationEmpty, 0},
		{ErrCodeValidationFailed, 0},
		{ErrCodeNotFound, 0},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, GetRetryCount(tt.code))
			assert.Equal(t, tt.want > 0, IsRetryableErrorCode(tt.code))
		})
	}
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "GENERATION", GetErrorCategory(ErrCodeGenerationEmpty))
	assert.Equal(t, "GENERATION", GetErrorCategory(ErrCodeInvalidPayload))
	assert.Equal(t, "PERSISTENCE", GetErrorCategory(ErrCodeCacheWriteFailed))
	assert.Equal(t, "BACKEND", GetErrorCategory(ErrCodeBackendFailed))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidationFailed))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}

func TestConvertToBPMNError(t *testing.T) {
	stdErr := NewCacheWriteFailedError("roadmap_x", fmt.Errorf("connection refused"))
	b := ConvertToBPMNError(stdErr)

	assert.Equal(t, "CACHE_WRITE_FAILED", b.Code)
	assert.Equal(t, 3, b.Retries)
	assert.Equal(t, "connection refused", b.Details)

	vars := b.ToErrorVariables()
	assert.Equal(t, "CACHE_WRITE_FAILED", vars["errorCode"])
	assert.Equal(t, "PERSISTENCE", vars["errorCategory"])
	assert.Equal(t, "roadmap_x", vars["key"])

	stdErr.Retryable = false
	assert.Equal(t, 0, ConvertToBPMNError(stdErr).Retries)
}

func TestStandardErrorUnwrap(t *testing.T) {
	cause := stderrors.New("GENERATION_FAILED")
	wrapped := fmt.Errorf("roadmap: %w", NewGenerationFailedError("roadmap", cause))

	stdErr, ok := AsStandardError(wrapped)
	require.True(t, ok)
	assert.Equal(t, ErrCodeGenerationFailed, stdErr.Code)
	assert.True(t, stderrors.Is(wrapped, cause))

	_, ok = AsStandardError(stderrors.New("plain"))
	assert.False(t, ok)
}

func TestErrorHandlerDecide(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		jobRetries  int32
		wantThrow   bool
		wantRetries int
	}{
		{"retryable with budget", NewGenerationFailedError("canvas", stderrors.New("503")), 3, false, 2},
		{"retry capped by job", NewGenerationFailedError("canvas", stderrors.New("503")), 2, false, 1},
		{"last attempt throws", NewGenerationFailedError("canvas", stderrors.New("503")), 1, true, 0},
		{"empty is not retried", NewGenerationEmptyError("canvas"), 3, true, 0},
		{"plain error is internal", stderrors.New("boom"), 3, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log := &recordingLogger{}
			d := NewErrorHandler(log).Decide(job(tt.jobRetries), tt.err)

			assert.Equal(t, tt.wantThrow, d.Throw)
			assert.Equal(t, tt.wantRetries, d.Retries)
			require.Len(t, log.messages, 1)
			assert.Equal(t, int64(42), log.fields[0]["jobKey"])
		})
	}
}

func TestNormalize(t *testing.T) {
	n := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, n.Code)
	assert.Equal(t, "boom", n.Details)
	assert.False(t, n.Retryable)
}
