package tracer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/doeshing/nlsh/internal/domain"
)

func TestSetupDisabledUsesNoop(t *testing.T) {
	shutdown, err := Setup(context.Background(), domain.TracingSettings{Enabled: false})
	require.NoError(t, err)
	defer shutdown(context.Background())

	_, ok := otel.GetTracerProvider().(noop.TracerProvider)
	assert.True(t, ok)
}

func TestSetupStdout(t *testing.T) {
	shutdown, err := Setup(context.Background(), domain.TracingSettings{Enabled: true, Exporter: "stdout"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))
	otel.SetTracerProvider(noop.NewTracerProvider())
}

func TestSetupUnsupportedExporter(t *testing.T) {
	_, err := Setup(context.Background(), domain.TracingSettings{Enabled: true, Exporter: "jaeger"})
	assert.Error(t, err)
}

func TestSpanHelpers(t *testing.T) {
	_, span := StartSpan(context.Background(), "test")
	span.SetAttributes(StringAttr("k", "v"), IntAttr("n", 1), BoolAttr("b", true))
	RecordError(span, errors.New("boom"))
	SetOK(span)
	span.End()
}
