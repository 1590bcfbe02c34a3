package trendstore

import (
	"trending-etl/lib/telemetry"

	"go.opentelemetry.io/otel/metric"
)

var tracer = telemetry.Tracer("trending.lib.trendstore")
var meter = telemetry.Meter("trending.lib.trendstore")

var rowsSavedCounter, _ = meter.Int64Counter(
	"trendstore.rows_saved",
	metric.WithDescription("rows committed to the trending table"),
)
