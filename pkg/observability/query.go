package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// QueryObserver instruments query strings with a span per query, a counter,
// a duration histogram and a result size histogram. It reads the global
// providers, so it records nothing until InitTelemetry has run.
type QueryObserver struct {
	tracer   trace.Tracer
	count    metric.Int64Counter
	duration metric.Float64Histogram
	rows     metric.Int64Histogram
}

func NewQueryObserver() *QueryObserver {
	meter := otel.Meter(tracerName)

	count, _ := meter.Int64Counter(
		"biomatrix_query_count",
		metric.WithDescription("Total number of processed query strings"),
		metric.WithUnit("{query}"),
	)
	duration, _ := meter.Float64Histogram(
		"biomatrix_query_duration_ms",
		metric.WithDescription("Query string processing time in milliseconds"),
		metric.WithUnit("ms"),
	)
	rows, _ := meter.Int64Histogram(
		"biomatrix_query_rows",
		metric.WithDescription("Number of records returned per query"),
		metric.WithUnit("{row}"),
	)

	return &QueryObserver{
		tracer:   otel.Tracer(tracerName),
		count:    count,
		duration: duration,
		rows:     rows,
	}
}

// Start opens a span for query. The returned function ends it and records
// the outcome; entity may be empty when the query failed to parse.
func (o *QueryObserver) Start(ctx context.Context, query string) (context.Context, func(entity string, rows int, err error)) {
	ctx, span := o.tracer.Start(ctx, "biomatrix.query",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("biomatrix.query", query)),
	)
	start := time.Now()

	return ctx, func(entity string, rows int, err error) {
		defer span.End()

		ms := float64(time.Since(start).Microseconds()) / 1000
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.SetAttributes(
			attribute.String("biomatrix.entity", entity),
			attribute.Int("biomatrix.rows", rows),
		)

		attrs := metric.WithAttributes(
			attribute.String("entity", entity),
			attribute.String("status", status),
		)
		o.count.Add(ctx, 1, attrs)
		o.duration.Record(ctx, ms, attrs)
		if err == nil {
			o.rows.Record(ctx, int64(rows), attrs)
		}
	}
}
