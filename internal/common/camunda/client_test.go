// internal/common/camunda/client_test.go
package camunda

import (
	"context"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea-lab/internal/common/config"
	"idea-lab/internal/common/errors"
)

var fastRetry = &RetryConfig{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}

func TestExecuteWithRetry_RetriesTransientErrors(t *testing.T) {
	calls := 0
	got, err := ExecuteWithRetry(context.Background(), fastRetry, "deploy", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", stderrors.New("rpc error: code = Unavailable desc = connection refused")
		}
		return "ok", nil
	})

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
}

func TestExecuteWithRetry_StopsOnPermanentError(t *testing.T) {
	calls := 0
	_, err := ExecuteWithRetry(context.Background(), fastRetry, "publish", func(context.Context) (int, error) {
		calls++
		return 0, stderrors.New("invalid argument")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeBackendFailed, stdErr.Code)
}

func TestExecuteWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	_, err := ExecuteWithRetry(context.Background(), fastRetry, "topology", func(context.Context) (int, error) {
		calls++
		return 0, stderrors.New("context deadline exceeded")
	})

	require.Error(t, err)
	assert.Equal(t, fastRetry.MaxRetries+1, calls)
	stdErr, ok := errors.AsStandardError(err)
	require.True(t, ok)
	assert.Equal(t, errors.ErrCodeUnavailable, stdErr.Code)
}

func TestExecuteWithRetry_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	slow := &RetryConfig{MaxRetries: 5, BaseDelay: time.Hour, MaxDelay: time.Hour}

	_, err := ExecuteWithRetry(ctx, slow, "topology", func(context.Context) (int, error) {
		cancel()
		return 0, stderrors.New("unavailable")
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMapZeebeError(t *testing.T) {
	tests := []struct {
		msg  string
		code errors.ErrorCode
	}{
		{"connection reset by peer", errors.ErrCodeUnavailable},
		{"deadline exceeded", errors.ErrCodeUnavailable},
		{"process definition not found", errors.ErrCodeNotFound},
		{"permission denied", errors.ErrCodeBackendFailed},
	}
	for _, tt := range tests {
		t.Run(tt.msg, func(t *testing.T) {
			stdErr, ok := errors.AsStandardError(mapZeebeError(stderrors.New(tt.msg), "op", 0))
			require.True(t, ok)
			assert.Equal(t, tt.code, stdErr.Code)
		})
	}
}

func TestConfigFrom(t *testing.T) {
	cc := ConfigFrom(config.CamundaConfig{BrokerAddress: "zeebe:26500", RequestTimeout: 5000})

	assert.Equal(t, "zeebe:26500", cc.GatewayAddress)
	assert.True(t, cc.UsePlaintextConnection)
	assert.Equal(t, 5*time.Second, cc.RequestTimeout)
	assert.Same(t, DefaultRetryConfig, cc.RetryConfig)
}
