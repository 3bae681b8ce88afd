package observability

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
)

func TestSpanWithoutInit(t *testing.T) {
	// the global no-op provider accepts spans
	ctx, span := StartSpan(context.Background(), "noop")
	require.NotNil(t, ctx)
	span.SetAttribute("fields", 3)
	span.Finish(nil)
}

func TestInitExportsSpans(t *testing.T) {
	previous := otel.GetTracerProvider()
	defer otel.SetTracerProvider(previous)

	var buf bytes.Buffer
	config := DefaultTracingConfig()
	config.ServiceVersion = "test"
	config.Environment = "test"
	config.Writer = &buf

	shutdown, err := Init(config)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "converter.assemble")
	span.SetAttribute("mode", "regression")
	span.SetAttribute("derived_fields", 1)
	span.SetAttribute("duplicate", false)
	span.SetAttribute("ratio", 0.5)
	span.SetAttribute("other", []string{"a"})
	span.Finish(errors.New("boom"))

	require.NoError(t, shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, "converter.assemble")
	assert.Contains(t, out, "regression")
	assert.Contains(t, out, "boom")
}

func TestInitNeverSample(t *testing.T) {
	previous := otel.GetTracerProvider()
	defer otel.SetTracerProvider(previous)

	var buf bytes.Buffer
	config := DefaultTracingConfig()
	config.SamplingRate = 0
	config.Writer = &buf

	shutdown, err := Init(config)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "dropped")
	span.End()
	require.NoError(t, shutdown(context.Background()))

	assert.NotContains(t, buf.String(), "dropped")
}

func TestStatus(t *testing.T) {
	assert.Equal(t, "success", Status(nil))
	assert.Equal(t, "error", Status(errors.New("x")))
}
