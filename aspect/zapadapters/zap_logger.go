// Package zapadapters provides go.uber.org/zap adapters for the aspect.Logger and aspect.ContextualLogger interfaces.
package zapadapters

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/AntonStoeckl/dynamic-aspects-go/aspect"
)

const (
	fieldTraceID = "trace_id"
	fieldSpanID  = "span_id"
)

// Logger implements aspect.Logger and aspect.ContextualLogger on top of a zap.SugaredLogger.
// Arguments are slog-style key/value pairs, which map directly onto zap's "w" methods.
// The context-aware methods add trace_id and span_id fields when the context carries a valid span.
type Logger struct {
	sugar *zap.SugaredLogger
}

// NewLogger wraps logger. A nil logger is replaced by zap.NewNop().
func NewLogger(logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Logger{sugar: logger.Sugar()}
}

// NewProductionLogger builds a JSON zap logger at info level, or debug level when verbose is set.
func NewProductionLogger(verbose bool) (*Logger, error) {
	config := zap.NewProductionConfig()
	if verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return NewLogger(logger), nil
}

// Sync flushes buffered log entries.
func (l *Logger) Sync() error {
	return l.sugar.Sync()
}

func (l *Logger) Debug(msg string, args ...any) { l.sugar.Debugw(msg, args...) }
func (l *Logger) Info(msg string, args ...any)  { l.sugar.Infow(msg, args...) }
func (l *Logger) Warn(msg string, args ...any)  { l.sugar.Warnw(msg, args...) }
func (l *Logger) Error(msg string, args ...any) { l.sugar.Errorw(msg, args...) }

func (l *Logger) DebugContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Debugw(msg, withTraceFields(ctx, args)...)
}

func (l *Logger) InfoContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Infow(msg, withTraceFields(ctx, args)...)
}

func (l *Logger) WarnContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Warnw(msg, withTraceFields(ctx, args)...)
}

func (l *Logger) ErrorContext(ctx context.Context, msg string, args ...any) {
	l.sugar.Errorw(msg, withTraceFields(ctx, args)...)
}

func withTraceFields(ctx context.Context, args []any) []any {
	spanCtx := trace.SpanContextFromContext(ctx)
	if !spanCtx.IsValid() {
		return args
	}

	fields := make([]any, 0, len(args)+4)
	fields = append(fields, args...)

	return append(fields,
		fieldTraceID, spanCtx.TraceID().String(),
		fieldSpanID, spanCtx.SpanID().String())
}

var (
	_ aspect.Logger           = (*Logger)(nil)
	_ aspect.ContextualLogger = (*Logger)(nil)
)
