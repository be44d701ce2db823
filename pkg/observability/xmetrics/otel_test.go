package xmetrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func newTestObserver(t *testing.T) (Observer, *tracetest.InMemoryExporter, *sdkmetric.ManualReader) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		_ = mp.Shutdown(context.Background())
	})

	obs, err := NewOTelObserver(
		WithInstrumentationName("xchkit-test"),
		WithTracerProvider(tp),
		WithMeterProvider(mp),
	)
	require.NoError(t, err)
	return obs, exporter, reader
}

func TestNewOTelObserver_GlobalProviders(t *testing.T) {
	obs, err := NewOTelObserver(WithInstrumentationName(""), WithTracerProvider(nil), WithMeterProvider(nil), nil)
	require.NoError(t, err)
	assert.NotNil(t, obs)
}

func TestOTelObserver_SuccessSpan(t *testing.T) {
	obs, exporter, reader := newTestObserver(t)

	_, span := obs.Start(context.Background(), SpanOptions{
		Component: "xclickhouse",
		Operation: "connect",
		Kind:      KindClient,
		Attrs:     []Attr{String("db.connection", "logs"), {Key: "", Value: 1}, {Key: "nil", Value: nil}},
	})
	span.End(Result{Attrs: []Attr{Int("attempts", 2), {Key: "delay", Value: 3 * time.Second}}})
	// 幂等
	span.End(Result{Err: assert.AnError})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "xclickhouse.connect", got.Name)
	assert.Equal(t, trace.SpanKindClient, got.SpanKind)
	assert.Equal(t, codes.Ok, got.Status.Code)
	assert.Contains(t, got.Attributes, attribute.String("db.connection", "logs"))
	assert.Contains(t, got.Attributes, attribute.Int("attempts", 2))
	assert.Contains(t, got.Attributes, attribute.Int64("delay", 3000))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	var total metricdata.Sum[int64]
	for _, m := range rm.ScopeMetrics[0].Metrics {
		if m.Name == MetricOperationTotal {
			var ok bool
			total, ok = m.Data.(metricdata.Sum[int64])
			require.True(t, ok)
		}
	}
	require.Len(t, total.DataPoints, 1)
	assert.Equal(t, int64(1), total.DataPoints[0].Value)
	status, ok := total.DataPoints[0].Attributes.Value("status")
	require.True(t, ok)
	assert.Equal(t, "ok", status.AsString())
}

func TestOTelObserver_ErrorSpan(t *testing.T) {
	obs, exporter, _ := newTestObserver(t)

	_, span := obs.Start(context.Background(), SpanOptions{})
	span.End(Result{Err: assert.AnError})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "unknown.unknown", spans[0].Name)
	assert.Equal(t, trace.SpanKindInternal, spans[0].SpanKind)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Equal(t, assert.AnError.Error(), spans[0].Status.Description)
}

func TestOTelObserver_ExplicitErrorStatusWithoutErr(t *testing.T) {
	obs, exporter, _ := newTestObserver(t)

	_, span := obs.Start(context.Background(), SpanOptions{Component: "c", Operation: "o"})
	span.End(Result{Status: StatusError})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "operation failed", spans[0].Status.Description)
}
