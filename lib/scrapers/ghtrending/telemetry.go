package ghtrending

import (
	"trending-etl/lib/telemetry"

	"go.opentelemetry.io/otel/metric"
)

var tracer = telemetry.Tracer("trending.lib.scrapers.ghtrending")
var meter = telemetry.Meter("trending.lib.scrapers.ghtrending")

var entriesCounter, _ = meter.Int64Counter(
	"trending.entries",
	metric.WithDescription("entries found on fetched trending pages"),
)
var droppedCounter, _ = meter.Int64Counter(
	"trending.dropped",
	metric.WithDescription("entries skipped because they could not be parsed"),
)
