package oteladapters_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/AntonStoeckl/dynamic-aspects-go/aspect/oteladapters"
)

func givenMeter(t *testing.T) (metric.Meter, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	return provider.Meter("test"), reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var resourceMetrics metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &resourceMetrics))

	return resourceMetrics
}

func Test_MetricsCollector_RecordDuration(t *testing.T) {
	meter, reader := givenMeter(t)
	collector := oteladapters.NewMetricsCollector(meter)

	collector.RecordDuration("aspect_invocation_duration_seconds", 150*time.Millisecond, map[string]string{
		"class":  "Account",
		"status": "success",
	})

	histogram := findHistogramMetric(t, collect(t, reader), "aspect_invocation_duration_seconds")
	require.Len(t, histogram.DataPoints, 1)
	dataPoint := histogram.DataPoints[0]
	assert.Equal(t, uint64(1), dataPoint.Count)
	assert.InDelta(t, 0.15, dataPoint.Sum, 0.001)

	status, ok := dataPoint.Attributes.Value(attribute.Key("status"))
	require.True(t, ok)
	assert.Equal(t, "success", status.AsString())
}

func Test_MetricsCollector_IncrementCounter(t *testing.T) {
	meter, reader := givenMeter(t)
	collector := oteladapters.NewMetricsCollector(meter)
	labels := map[string]string{"error_type": "call"}

	collector.IncrementCounter("aspect_invocation_errors_total", labels)
	collector.IncrementCounterContext(context.Background(), "aspect_invocation_errors_total", labels)

	counter := findCounterMetric(t, collect(t, reader), "aspect_invocation_errors_total")
	require.Len(t, counter.DataPoints, 1)
	assert.Equal(t, int64(2), counter.DataPoints[0].Value)
	assert.True(t, counter.IsMonotonic)
}

func Test_MetricsCollector_RecordValue(t *testing.T) {
	meter, reader := givenMeter(t)
	collector := oteladapters.NewMetricsCollector(meter)

	collector.RecordValue("aspect_woven_classes", 1, nil)
	collector.RecordValueContext(context.Background(), "aspect_woven_classes", 3, nil)

	gauge := findGaugeMetric(t, collect(t, reader), "aspect_woven_classes")
	require.Len(t, gauge.DataPoints, 1)
	assert.Equal(t, float64(3), gauge.DataPoints[0].Value)
}

func Test_MetricsCollector_SkipsInstrumentsThatFailToCreate(t *testing.T) {
	meter, reader := givenMeter(t)
	collector := oteladapters.NewMetricsCollector(&errorInjectingMeter{Meter: meter})

	assert.NotPanics(t, func() {
		collector.RecordDuration("error_histogram", time.Second, nil)
		collector.IncrementCounter("error_counter", nil)
		collector.RecordValue("error_gauge", 1, nil)
		collector.IncrementCounter("good_counter", nil)
	})

	counter := findCounterMetric(t, collect(t, reader), "good_counter")
	assert.Equal(t, int64(1), counter.DataPoints[0].Value)
}

func Test_MetricsCollector_IsSafeForConcurrentUse(t *testing.T) {
	meter, reader := givenMeter(t)
	collector := oteladapters.NewMetricsCollector(meter)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			collector.IncrementCounter("aspect_weave_operations_total", map[string]string{"operation": "weave"})
			collector.RecordDuration("aspect_invocation_duration_seconds", time.Millisecond, nil)
		}()
	}
	wg.Wait()

	counter := findCounterMetric(t, collect(t, reader), "aspect_weave_operations_total")
	assert.Equal(t, int64(20), counter.DataPoints[0].Value)
}

type errorInjectingMeter struct {
	metric.Meter
}

func (m *errorInjectingMeter) Float64Histogram(name string, options ...metric.Float64HistogramOption) (metric.Float64Histogram, error) {
	if name == "error_histogram" {
		return nil, errors.New("histogram creation failed")
	}
	return m.Meter.Float64Histogram(name, options...)
}

func (m *errorInjectingMeter) Int64Counter(name string, options ...metric.Int64CounterOption) (metric.Int64Counter, error) {
	if name == "error_counter" {
		return nil, errors.New("counter creation failed")
	}
	return m.Meter.Int64Counter(name, options...)
}

func (m *errorInjectingMeter) Float64Gauge(name string, options ...metric.Float64GaugeOption) (metric.Float64Gauge, error) {
	if name == "error_gauge" {
		return nil, errors.New("gauge creation failed")
	}
	return m.Meter.Float64Gauge(name, options...)
}

func findMetricData(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Aggregation {
	t.Helper()

	for _, scopeMetrics := range resourceMetrics.ScopeMetrics {
		for _, m := range scopeMetrics.Metrics {
			if m.Name == name {
				return m.Data
			}
		}
	}

	t.Fatalf("metric %s not found", name)
	return nil
}

func findHistogramMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Histogram[float64] {
	t.Helper()

	h, ok := findMetricData(t, resourceMetrics, name).(metricdata.Histogram[float64])
	require.True(t, ok, "metric %s is not a float64 histogram", name)

	return h
}

func findCounterMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()

	c, ok := findMetricData(t, resourceMetrics, name).(metricdata.Sum[int64])
	require.True(t, ok, "metric %s is not an int64 sum", name)

	return c
}

func findGaugeMetric(t *testing.T, resourceMetrics metricdata.ResourceMetrics, name string) metricdata.Gauge[float64] {
	t.Helper()

	g, ok := findMetricData(t, resourceMetrics, name).(metricdata.Gauge[float64])
	require.True(t, ok, "metric %s is not a float64 gauge", name)

	return g
}
