// internal/common/observability/observability_test.go
package observability

import (
	"context"
	"testing"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestStartSpanRecords(t *testing.T) {
	rec := tracetest.NewSpanRecorder()
	reg := promclient.NewRegistry()
	o, err := New("idea-lab-test", WithSpanProcessor(rec), WithRegisterer(reg))
	require.NoError(t, err)
	defer o.Shutdown()

	ctx, span := o.StartSpan(context.Background(), "generate.roadmap", attribute.String("idea", "abc"))
	o.RecordGeneration(ctx, "roadmap", "loaded", 120*time.Millisecond)
	span.End()

	ended := rec.Ended()
	require.Len(t, ended, 1)
	assert.Equal(t, "generate.roadmap", ended[0].Name())

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "generation_requests_total")
	assert.Contains(t, names, "generation_duration_milliseconds")
	for _, n := range names {
		assert.NotContains(t, n, ".")
	}
}

func TestNoop(t *testing.T) {
	o := Noop()
	_, span := o.StartSpan(context.Background(), "x")
	span.End()
	o.RecordGeneration(context.Background(), "canvas", "failed", time.Second)
	o.Shutdown()
}
