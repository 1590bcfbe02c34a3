// Package trending runs the pipeline: the ingest half fetches, extracts and
// persists one snapshot of the trending page, the report half loads what
// has been stored and renders a summary of it.
package trending

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"trending-etl/lib/report"
	"trending-etl/lib/scrapers/ghtrending"
	"trending-etl/lib/telemetry"
	"trending-etl/lib/trending"
	"trending-etl/lib/trendstore"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("trending.services.trending")

type Fetcher interface {
	Fetch(ctx context.Context, link string) ([]byte, error)
}

type Options struct {
	// defaults to ghtrending.DefaultUrl
	Url     string
	Extract ghtrending.ExtractOptions
}

type Service struct {
	fetcher Fetcher
	store   trendstore.Store
	url     string
	extract ghtrending.ExtractOptions
}

func NewService(fetcher Fetcher, store trendstore.Store, opts Options) Service {
	url := opts.Url
	if url == "" {
		url = ghtrending.DefaultUrl
	}
	return Service{
		fetcher: fetcher,
		store:   store,
		url:     url,
		extract: opts.Extract,
	}
}

type IngestResult struct {
	Batch    trendstore.Batch
	Entries  int
	Saved    int
	Dropped  int
	Warnings []ghtrending.ParseWarning
}

// Ingest stores one snapshot of the trending page. Entries that could not
// be parsed are skipped and returned as warnings.
func (s Service) Ingest(ctx context.Context) (IngestResult, error) {
	ctx, span := tracer.Start(ctx, "Ingest")
	defer span.End()
	span.SetAttributes(attribute.String("url", s.url))

	content, err := s.fetcher.Fetch(ctx, s.url)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, err
	}

	extraction, err := ghtrending.Extract(ctx, content, s.extract)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, err
	}
	if extraction.Entries == 0 {
		slog.WarnContext(ctx, "no entries found on page, the layout may have changed", "url", s.url)
	}

	err = s.store.EnsureSchema(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, err
	}

	batch, err := s.store.Save(ctx, extraction.Records)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return IngestResult{}, err
	}

	result := IngestResult{
		Batch:    batch,
		Entries:  extraction.Entries,
		Saved:    len(extraction.Records),
		Dropped:  extraction.Dropped(),
		Warnings: extraction.Warnings,
	}
	slog.InfoContext(
		ctx, "ingested trending page",
		"url", s.url,
		"batch", batch.Id,
		"entries", result.Entries,
		"saved", result.Saved,
		"dropped", result.Dropped,
	)
	return result, nil
}

type ReportOptions struct {
	// only summarize the most recent batch
	Latest bool
}

// Load returns the stored records the report would be built from. A store
// that was never written to yields an empty dataset.
func (s Service) Load(ctx context.Context, opts ReportOptions) (trending.Dataset, error) {
	err := s.store.EnsureSchema(ctx)
	if err != nil {
		return nil, err
	}
	if opts.Latest {
		return s.store.LoadLatest(ctx)
	}
	return s.store.LoadAll(ctx)
}

// Report renders a summary of the stored records to `w`. It fails with
// report.ErrEmptyDataset when nothing has been stored yet.
func (s Service) Report(ctx context.Context, w io.Writer, opts ReportOptions) error {
	ctx, span := tracer.Start(ctx, "Report")
	defer span.End()
	span.SetAttributes(attribute.Bool("latest", opts.Latest))

	dataset, err := s.Load(ctx, opts)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("load dataset: %w", err)
	}
	if len(dataset) == 0 {
		return report.ErrEmptyDataset
	}

	summary, err := report.Summarize(dataset)
	if err != nil {
		return err
	}
	return report.Render(w, summary)
}
