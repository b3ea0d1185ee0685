package oteladapters_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/AntonStoeckl/dynamic-aspects-go/aspect/oteladapters"
)

func givenTracingCollector(t *testing.T) (*oteladapters.TracingCollector, *tracetest.InMemoryExporter) {
	t.Helper()

	exporter := tracetest.NewInMemoryExporter()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return oteladapters.NewTracingCollector(provider.Tracer("test")), exporter
}

func Test_TracingCollector_StartAndFinishSpan(t *testing.T) {
	collector, exporter := givenTracingCollector(t)

	ctx, spanCtx := collector.StartSpan(context.Background(), "aspect.invoke", map[string]string{
		"class":  "Account",
		"member": "Withdraw",
	})
	require.NotNil(t, ctx)
	require.NotNil(t, spanCtx)

	collector.FinishSpan(spanCtx, "success", map[string]string{"duration_ms": "0.12"})

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	span := spans[0]
	assert.Equal(t, "aspect.invoke", span.Name)
	assertSpanHasAttribute(t, span, "class", "Account")
	assertSpanHasAttribute(t, span, "member", "Withdraw")
	assertSpanHasAttribute(t, span, "duration_ms", "0.12")
	assert.Equal(t, codes.Ok, span.Status.Code)
}

func Test_TracingCollector_FinishSpan_MapsStatuses(t *testing.T) {
	tests := []struct {
		status       string
		expectedCode codes.Code
		handledAttr  bool
	}{
		{status: "success", expectedCode: codes.Ok},
		{status: "error", expectedCode: codes.Error},
		{status: "handled", expectedCode: codes.Unset, handledAttr: true},
		{status: "weird", expectedCode: codes.Unset},
	}

	for _, tc := range tests {
		t.Run(tc.status, func(t *testing.T) {
			collector, exporter := givenTracingCollector(t)

			_, spanCtx := collector.StartSpan(context.Background(), "aspect.invoke", nil)
			collector.FinishSpan(spanCtx, tc.status, nil)

			spans := exporter.GetSpans()
			require.Len(t, spans, 1)
			assert.Equal(t, tc.expectedCode, spans[0].Status.Code)

			handled := false
			for _, attr := range spans[0].Attributes {
				if attr.Key == "error.handled" {
					handled = attr.Value.AsBool()
				}
			}
			assert.Equal(t, tc.handledAttr, handled)
		})
	}
}

func Test_TracingCollector_StartSpan_CreatesChildOfCallerSpan(t *testing.T) {
	collector, exporter := givenTracingCollector(t)

	parentCtx, parent := collector.StartSpan(context.Background(), "request", nil)
	_, child := collector.StartSpan(parentCtx, "aspect.invoke", nil)
	collector.FinishSpan(child, "success", nil)
	collector.FinishSpan(parent, "success", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 2)
	assert.Equal(t, spans[1].SpanContext.TraceID(), spans[0].SpanContext.TraceID())
	assert.Equal(t, spans[1].SpanContext.SpanID(), spans[0].Parent.SpanID())
}

func Test_TracingCollector_FinishSpan_IgnoresForeignSpanContexts(t *testing.T) {
	collector, exporter := givenTracingCollector(t)

	assert.NotPanics(t, func() {
		collector.FinishSpan(nil, "success", nil)
	})
	assert.Empty(t, exporter.GetSpans())
}

func Test_OTelSpanContext_AddAttribute(t *testing.T) {
	collector, exporter := givenTracingCollector(t)

	_, spanCtx := collector.StartSpan(context.Background(), "aspect.invoke", nil)
	spanCtx.AddAttribute("tenant", "acme")
	spanCtx.SetStatus("error")
	collector.FinishSpan(spanCtx, "error", nil)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assertSpanHasAttribute(t, spans[0], "tenant", "acme")
	assert.Equal(t, codes.Error, spans[0].Status.Code)
}

func assertSpanHasAttribute(t *testing.T, span tracetest.SpanStub, key, expectedValue string) {
	t.Helper()

	for _, attr := range span.Attributes {
		if attr.Key == attribute.Key(key) {
			assert.Equal(t, expectedValue, attr.Value.AsString(), "attribute %s", key)
			return
		}
	}

	t.Errorf("attribute %s not found on span %s", key, span.Name)
}
