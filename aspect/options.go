package aspect

// Option defines a functional option for configuring a Weaver.
type Option func(*Weaver) error

// WithLogger sets the logger for the Weaver.
// The logger will receive messages at different levels based on the logger's configured level:
//
// Debug level: every intercepted invocation with its status and duration (development use)
// Info level: weave and unweave operations (production-safe).
func WithLogger(logger Logger) Option {
	return func(w *Weaver) error {
		w.logger = logger
		return nil
	}
}

// WithContextualLogger sets the contextual logger for the Weaver.
// Invocation log records then carry the invocation context, which enables trace correlation.
func WithContextualLogger(logger ContextualLogger) Option {
	return func(w *Weaver) error {
		w.contextualLogger = logger
		return nil
	}
}

// WithMetrics sets the metrics collector for the Weaver.
// It receives weave operation counts, the number of woven classes, invocation durations and invocation errors.
func WithMetrics(collector MetricsCollector) Option {
	return func(w *Weaver) error {
		w.metricsCollector = collector
		return nil
	}
}

// WithTracing sets the tracing collector for the Weaver.
// Every intercepted invocation is recorded as one span.
func WithTracing(collector TracingCollector) Option {
	return func(w *Weaver) error {
		w.tracingCollector = collector
		return nil
	}
}
