// cmd/idea-lab/app_test.go
package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"idea-lab/internal/common/logger"
	"idea-lab/pkg/registry"
)

func TestRetryWithBackoff(t *testing.T) {
	log := logger.NewTestLogger(t)

	calls := 0
	err := retryWithBackoff(context.Background(), func() error {
		calls++
		if calls < 3 {
			return errors.New("not yet")
		}
		return nil
	}, 5, time.Millisecond, log, "connect")
	require.NoError(t, err)
	assert.Equal(t, 3, calls)

	calls = 0
	err = retryWithBackoff(context.Background(), func() error {
		calls++
		return errors.New("down")
	}, 3, time.Millisecond, log, "connect")
	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.Contains(t, err.Error(), "connect failed after 3 attempts")
}

func TestRetryWithBackoff_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := retryWithBackoff(ctx, func() error { return errors.New("down") }, 5, time.Hour, logger.NewNoOpLogger(), "connect")

	assert.ErrorIs(t, err, context.Canceled)
}

func TestMetricsServer(t *testing.T) {
	healthy := true
	srv := metricsServer(":0", func(context.Context) error {
		if healthy {
			return nil
		}
		return errors.New("db down")
	})

	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())

	healthy = false
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()

	for _, name := range []string{"serve", "worker", "generate", "registry"} {
		sub, _, err := root.Find([]string{name})
		require.NoError(t, err)
		assert.Equal(t, name, sub.Name())
	}
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))

	gen, _, _ := root.Find([]string{"generate"})
	assert.NotNil(t, gen.Flags().Lookup("industry"))
}

func TestRegistryValidateCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "activity-registry.json")
	reg := &registry.ActivityRegistry{Activities: []registry.Activity{
		{ID: "generate-canvas", TaskType: "idea-lab.generate-canvas", ImplementationStatus: "completed", Timeout: "1m0s"},
	}}
	require.NoError(t, registry.SaveRegistry(path, reg, time.Now()))

	root := newRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"registry", "validate", "--path", path})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "1 activities ok")
}
