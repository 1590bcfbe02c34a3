package ghtrending

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"trending-etl/lib/htmlutil"
	"trending-etl/lib/trending"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var ErrMissing = errors.New("element is missing or empty")

// ParseWarning describes an entry that was skipped, Index is the entry's
// position on the page and Field the first field that failed.
type ParseWarning struct {
	Index int
	Field string
	Err   error
}

func (w ParseWarning) Error() string {
	return fmt.Sprintf("entry %d: %s: %v", w.Index, w.Field, w.Err)
}

func (w ParseWarning) Unwrap() error {
	return w.Err
}

type Extraction struct {
	Records  []trending.Record
	Warnings []ParseWarning
	// number of entry elements found on the page
	Entries int
}

func (e Extraction) Dropped() int {
	return len(e.Warnings)
}

type ExtractOptions struct {
	// prefixed to each entry's relative href to form RepoUrl, defaults
	// to DefaultOrigin
	Origin string
	Layout Layout
}

type fieldError struct {
	field string
	err   error
}

func (e fieldError) Error() string {
	return fmt.Sprintf("%s: %v", e.field, e.err)
}

// requiredText fails when the element is absent or has no text.
func requiredText(sel *goquery.Selection, selector string) (string, error) {
	text := htmlutil.Text(sel.Find(selector))
	if text == "" {
		return "", ErrMissing
	}
	return text, nil
}

// optionalText falls back to trending.None when the element is absent
// or has no text.
func optionalText(sel *goquery.Selection, selector string) string {
	text := htmlutil.Text(sel.Find(selector))
	if text == "" {
		return trending.None
	}
	return text
}

// parseCount parses a comma grouped numeral such as "12,345".
func parseCount(token string) (int, error) {
	digits := strings.ReplaceAll(token, ",", "")
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0, fmt.Errorf("not a count: %q", token)
	}
	if n < 0 {
		return 0, fmt.Errorf("negative count: %q", token)
	}
	return n, nil
}

// splitName splits "owner / name" on its first slash.
func splitName(text string) (string, string, error) {
	owner, name, found := strings.Cut(text, "/")
	if !found {
		return "", "", fmt.Errorf("no '/' in %q", text)
	}
	owner = strings.TrimSpace(owner)
	name = strings.TrimSpace(name)
	if owner == "" || name == "" {
		return "", "", fmt.Errorf("empty owner or name in %q", text)
	}
	if strings.Contains(name, "/") {
		return "", "", fmt.Errorf("more than two parts in %q", text)
	}
	return owner, name, nil
}

func joinUrl(origin, href string) string {
	return strings.TrimRight(origin, "/") + "/" + strings.TrimLeft(href, "/")
}

func extractEntry(ctx context.Context, entry *goquery.Selection, opts ExtractOptions) (trending.Record, error) {
	anchors := htmlutil.GetAnchors(ctx, entry.Find(opts.Layout.NameAnchor).First())
	if len(anchors) == 0 || anchors[0].Name == "" {
		return trending.Record{}, fieldError{field: "name", err: ErrMissing}
	}
	if anchors[0].Href == "" {
		return trending.Record{}, fieldError{field: "href", err: ErrMissing}
	}
	userName, repoName, err := splitName(anchors[0].Name)
	if err != nil {
		return trending.Record{}, fieldError{field: "name", err: err}
	}

	starsForks, err := requiredText(entry, opts.Layout.StarsForks)
	if err != nil {
		return trending.Record{}, fieldError{field: "stars", err: err}
	}
	tokens := strings.Fields(starsForks)
	if len(tokens) < 2 {
		return trending.Record{}, fieldError{
			field: "forks",
			err:   fmt.Errorf("expected stars and forks in %q", starsForks),
		}
	}
	star, err := parseCount(tokens[0])
	if err != nil {
		return trending.Record{}, fieldError{field: "stars", err: err}
	}
	fork, err := parseCount(tokens[1])
	if err != nil {
		return trending.Record{}, fieldError{field: "forks", err: err}
	}

	language := optionalText(entry, opts.Layout.Language)

	todayText, err := requiredText(entry, opts.Layout.TodayStars)
	if err != nil {
		return trending.Record{}, fieldError{field: "todayStars", err: err}
	}
	todayStar, err := parseCount(strings.Fields(todayText)[0])
	if err != nil {
		return trending.Record{}, fieldError{field: "todayStars", err: err}
	}

	return trending.Record{
		UserName:  userName,
		RepoName:  repoName,
		Star:      star,
		Fork:      fork,
		Language:  language,
		TodayStar: todayStar,
		RepoUrl:   joinUrl(opts.Origin, anchors[0].Href),
	}, nil
}

// Extract parses a trending listing page into records. Entries that do not
// match the layout are skipped and reported as warnings, an error is only
// returned when the content cannot be read as a document at all.
func Extract(ctx context.Context, content []byte, opts ExtractOptions) (Extraction, error) {
	ctx, span := tracer.Start(ctx, "Extract")
	defer span.End()

	if opts.Layout == (Layout{}) {
		opts.Layout = CurrentLayout
	}
	if opts.Origin == "" {
		opts.Origin = DefaultOrigin
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to parse html")
		return Extraction{}, fmt.Errorf("parse trending page: %w", err)
	}

	entries := doc.Find(opts.Layout.Entry)
	result := Extraction{
		Records: make([]trending.Record, 0, entries.Length()),
		Entries: entries.Length(),
	}

	entries.Each(func(i int, entry *goquery.Selection) {
		record, err := extractEntry(ctx, entry, opts)
		if err != nil {
			warning := ParseWarning{Index: i, Err: err}
			var fe fieldError
			if errors.As(err, &fe) {
				warning.Field = fe.field
				warning.Err = fe.err
			}
			slog.WarnContext(ctx, "skipping unparseable entry", "index", i, "field", warning.Field, "err", warning.Err)
			result.Warnings = append(result.Warnings, warning)
			return
		}
		result.Records = append(result.Records, record)
	})

	span.SetAttributes(
		attribute.Int("entries", result.Entries),
		attribute.Int("records", len(result.Records)),
		attribute.Int("dropped", result.Dropped()),
	)
	entriesCounter.Add(ctx, int64(result.Entries))
	droppedCounter.Add(ctx, int64(result.Dropped()))

	return result, nil
}
