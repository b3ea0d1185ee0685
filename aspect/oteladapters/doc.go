// Package oteladapters provides OpenTelemetry adapters for the observability interfaces of the aspect package.
//
// Adapters:
//   - TracingCollector: one OpenTelemetry span per intercepted invocation
//   - MetricsCollector: histograms, counters and gauges created on demand from a metric.Meter
//   - SlogBridgeLogger: aspect.ContextualLogger backed by the otelslog bridge, with trace correlation
//   - OTelLogger: aspect.ContextualLogger emitting records through the OpenTelemetry log API directly
//
// Usage:
//
//	weaver, err := aspect.NewWeaver(aspect.NewWeavingState(),
//		aspect.WithTracing(oteladapters.NewTracingCollector(otel.Tracer("billing"))),
//		aspect.WithMetrics(oteladapters.NewMetricsCollector(otel.Meter("billing"))),
//		aspect.WithContextualLogger(oteladapters.NewSlogBridgeLogger("billing")),
//	)
package oteladapters
