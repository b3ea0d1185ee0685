// Package testdoubles provides test doubles (spies) for the observability interfaces of the aspect package.
//
// This package contains spy implementations for OpenTelemetry-compatible observability
// interfaces used by the Weaver and the journal:
//   - MetricsCollectorSpy: captures metrics recording calls for verification
//   - TracingCollectorSpy: captures tracing spans with their start and finish attributes
//   - ContextualLoggerSpy: captures structured logging with context
//   - LogHandlerSpy: captures slog records, usable as aspect.Logger via slog.New
//
// These test doubles enable testing of observability instrumentation
// without requiring actual telemetry backends.
package testdoubles
