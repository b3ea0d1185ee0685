package aspect

import (
	"context"
	"fmt"
	"math"
	"time"
)

// logOperation logs weave/unweave operations at info level if a logger is configured.
func (w *Weaver) logOperation(action string, args ...any) {
	if w.logger != nil {
		w.logger.Info(logMsgOperation+action, args...)
	}

	if w.contextualLogger != nil {
		w.contextualLogger.InfoContext(context.Background(), logMsgOperation+action, args...)
	}
}

// logInvocation logs an intercepted invocation at debug level if a logger is configured.
func (w *Weaver) logInvocation(ctx context.Context, attr Attribute, status string, duration time.Duration, err error) {
	if w.logger == nil && w.contextualLogger == nil {
		return
	}

	args := []any{
		logAttrClass, attr.Class().Name(),
		logAttrMember, attr.Name(),
		logAttrStatus, status,
		logAttrDurationMS, w.toMilliseconds(duration),
	}
	if err != nil {
		args = append(args, logAttrError, err.Error())
	}

	if w.logger != nil {
		w.logger.Debug(logMsgInvocation+attr.Target().String(), args...)
	}

	if w.contextualLogger != nil {
		w.contextualLogger.DebugContext(ctx, logMsgInvocation+attr.Target().String(), args...)
	}
}

// toMilliseconds converts a time.Duration to float64 milliseconds with 3 decimal places.
func (w *Weaver) toMilliseconds(d time.Duration) float64 {
	return math.Round(float64(d.Nanoseconds())/1e6*1000) / 1000
}

// recordWeaveMetrics counts a weave operation and records the number of currently woven classes.
func (w *Weaver) recordWeaveMetrics(operation string, class *Class) {
	if w.metricsCollector == nil {
		return
	}

	w.metricsCollector.IncrementCounter(metricWeaveOperations, map[string]string{
		spanAttrOperation: operation,
		spanAttrClass:     class.Name(),
	})
	w.metricsCollector.RecordValue(metricWovenClasses, float64(w.state.WovenCount()), map[string]string{
		spanAttrOperation: operation,
	})
}

// recordInvocationMetrics records the duration of an invocation and counts failed ones,
// using the context-aware methods if the collector supports them.
func (w *Weaver) recordInvocationMetrics(
	ctx context.Context,
	attr Attribute,
	status string,
	duration time.Duration,
	errorType string,
) {
	if w.metricsCollector == nil {
		return
	}

	labels := map[string]string{
		spanAttrClass:     attr.Class().Name(),
		spanAttrMember:    attr.Name(),
		spanAttrOperation: operationInvoke,
		logAttrStatus:     status,
	}

	contextualCollector, isContextual := w.metricsCollector.(ContextualMetricsCollector)

	if isContextual {
		contextualCollector.RecordDurationContext(ctx, metricInvokeDuration, duration, labels)
	} else {
		w.metricsCollector.RecordDuration(metricInvokeDuration, duration, labels)
	}

	if status != statusError {
		return
	}

	errorLabels := map[string]string{
		spanAttrClass:     attr.Class().Name(),
		spanAttrMember:    attr.Name(),
		spanAttrErrorType: errorType,
	}

	if isContextual {
		contextualCollector.IncrementCounterContext(ctx, metricInvocationErrors, errorLabels)
	} else {
		w.metricsCollector.IncrementCounter(metricInvocationErrors, errorLabels)
	}
}

// startInvocationSpan starts a tracing span if the tracing collector is configured.
func (w *Weaver) startInvocationSpan(ctx context.Context, attr Attribute) (context.Context, SpanContext) {
	if w.tracingCollector == nil {
		return ctx, nil
	}

	return w.tracingCollector.StartSpan(ctx, spanNameInvoke, map[string]string{
		spanAttrOperation: operationInvoke,
		spanAttrClass:     attr.Class().Name(),
		spanAttrMember:    attr.Name(),
		spanAttrKind:      attr.Kind().String(),
	})
}

// finishInvocationSpan finishes a tracing span if the tracing collector is configured.
func (w *Weaver) finishInvocationSpan(span SpanContext, status string, duration time.Duration, errorType string) {
	if w.tracingCollector == nil || span == nil {
		return
	}

	attrs := map[string]string{
		spanAttrDurationMS: fmt.Sprintf("%.2f", float64(duration.Nanoseconds())/1e6),
	}
	if errorType != "" {
		attrs[spanAttrErrorType] = errorType
	}

	w.tracingCollector.FinishSpan(span, status, attrs)
}
