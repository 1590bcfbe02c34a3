package trendstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
	"trending-etl/lib/trending"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Store persists records into a single append-only table. Every operation
// takes its own connection from the pool and releases it before returning.
type Store struct {
	db      *sql.DB
	dialect Dialect
	now     func() time.Time
}

func New(database *sql.DB, dialect Dialect) Store {
	return Store{
		db:      database,
		dialect: dialect,
		now:     time.Now,
	}
}

// WithClock returns a copy of the store that stamps batches using `now`.
func (s Store) WithClock(now func() time.Time) Store {
	s.now = now
	return s
}

func (s Store) Dialect() Dialect {
	return s.dialect
}

func (s Store) Close() error {
	return s.db.Close()
}

// Batch identifies the rows written by one call to Save.
type Batch struct {
	Id        string
	FetchedAt time.Time
	Rows      int
}

// EnsureSchema creates the table if it is missing, it is safe to call
// any number of times.
func (s Store) EnsureSchema(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "store:EnsureSchema")
	defer span.End()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "failed to acquire connection")
		return &SchemaError{Table: Table, Err: err}
	}
	defer conn.Close()

	_, err = conn.ExecContext(ctx, s.dialect.createTable())
	if isAlreadyExists(err) {
		return nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create table")
		return &SchemaError{Table: Table, Err: err}
	}
	return nil
}

func checkWidth(field, value string, width int) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s: invalid utf-8", field)
	}
	if n := utf8.RuneCountInString(value); n > width {
		return fmt.Errorf("%s: %d characters exceeds width %d", field, n, width)
	}
	return nil
}

// encode checks that a record fits the table before it is written.
func encode(r trending.Record) error {
	err := r.Validate()
	if err != nil {
		return err
	}
	return errors.Join(
		checkWidth("userName", r.UserName, NameWidth),
		checkWidth("repoName", r.RepoName, NameWidth),
		checkWidth("language", r.Language, LanguageWidth),
		checkWidth("repoUrl", r.RepoUrl, UrlWidth),
	)
}

// Save appends the records as one batch in input order. Either every record
// is committed or, on the first failure, none are and a *PersistError is
// returned. Saving no records is a no-op.
func (s Store) Save(ctx context.Context, records []trending.Record) (Batch, error) {
	ctx, span := tracer.Start(ctx, "store:Save")
	defer span.End()
	span.SetAttributes(attribute.Int("records", len(records)))

	if len(records) == 0 {
		return Batch{}, nil
	}

	conn, err := s.db.Conn(ctx)
	if err != nil {
		span.SetStatus(codes.Error, "failed to acquire connection")
		return Batch{}, fmt.Errorf("save batch: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		span.SetStatus(codes.Error, "failed to begin transaction")
		return Batch{}, fmt.Errorf("save batch: %w", err)
	}
	defer tx.Rollback()

	// this also fails early when the table is missing, some drivers only
	// report that on the first insert
	var lastFetchedAt int64
	err = tx.QueryRowContext(ctx, s.dialect.selectLastFetchedAt()).Scan(&lastFetchedAt)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read last batch")
		return Batch{}, fmt.Errorf("save batch: %w", err)
	}

	// batches are stamped strictly after the previous one so the latest
	// batch is never ambiguous
	fetchedAt := max(s.now().UnixMilli(), lastFetchedAt+1)
	batch := Batch{
		Id:        uuid.NewString(),
		FetchedAt: time.UnixMilli(fetchedAt).UTC(),
		Rows:      len(records),
	}

	stmt, err := tx.PrepareContext(ctx, s.dialect.insert())
	if err != nil {
		span.SetStatus(codes.Error, "failed to prepare insert")
		return Batch{}, fmt.Errorf("save batch: %w", err)
	}
	defer stmt.Close()

	for i, r := range records {
		err := encode(r)
		if err == nil {
			_, err = stmt.ExecContext(
				ctx,
				r.UserName,
				r.RepoName,
				r.Star,
				r.Fork,
				r.Language,
				r.TodayStar,
				r.RepoUrl,
				batch.Id,
				batch.FetchedAt.UnixMilli(),
			)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to persist record")
			return Batch{}, &PersistError{Index: i, Record: r, Err: err}
		}
	}

	err = tx.Commit()
	if err != nil {
		span.SetStatus(codes.Error, "failed to commit")
		return Batch{}, fmt.Errorf("commit batch: %w", err)
	}

	rowsSavedCounter.Add(ctx, int64(len(records)))
	return batch, nil
}

func scanRecords(rows *sql.Rows) (trending.Dataset, error) {
	defer rows.Close()

	dataset := trending.Dataset{}
	for rows.Next() {
		var r trending.Record
		err := rows.Scan(
			&r.UserName,
			&r.RepoName,
			&r.Star,
			&r.Fork,
			&r.Language,
			&r.TodayStar,
			&r.RepoUrl,
		)
		if err != nil {
			return nil, err
		}
		dataset = append(dataset, r)
	}
	return dataset, rows.Err()
}

// LoadAll returns every row in the order the engine yields them.
func (s Store) LoadAll(ctx context.Context) (trending.Dataset, error) {
	ctx, span := tracer.Start(ctx, "store:LoadAll")
	defer span.End()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("load all: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, s.dialect.selectAll())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to query rows")
		return nil, fmt.Errorf("load all: %w", err)
	}
	dataset, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("load all: %w", err)
	}
	span.SetAttributes(attribute.Int("rows", len(dataset)))
	return dataset, nil
}

// LoadLatest returns the rows of the most recently saved batch.
func (s Store) LoadLatest(ctx context.Context) (trending.Dataset, error) {
	ctx, span := tracer.Start(ctx, "store:LoadLatest")
	defer span.End()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("load latest: %w", err)
	}
	defer conn.Close()

	var batchId string
	err = conn.QueryRowContext(ctx, s.dialect.selectLatestBatchId()).Scan(&batchId)
	if errors.Is(err, sql.ErrNoRows) {
		return trending.Dataset{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load latest: %w", err)
	}
	span.SetAttributes(attribute.String("batch", batchId))

	rows, err := conn.QueryContext(ctx, s.dialect.selectBatch(), batchId)
	if err != nil {
		return nil, fmt.Errorf("load latest: %w", err)
	}
	dataset, err := scanRecords(rows)
	if err != nil {
		return nil, fmt.Errorf("load latest: %w", err)
	}
	return dataset, nil
}

// Batches lists every saved batch, newest first.
func (s Store) Batches(ctx context.Context) ([]Batch, error) {
	ctx, span := tracer.Start(ctx, "store:Batches")
	defer span.End()

	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer conn.Close()

	rows, err := conn.QueryContext(ctx, s.dialect.selectBatches())
	if err != nil {
		return nil, fmt.Errorf("list batches: %w", err)
	}
	defer rows.Close()

	var batches []Batch
	for rows.Next() {
		var b Batch
		var fetchedAt int64
		err := rows.Scan(&b.Id, &fetchedAt, &b.Rows)
		if err != nil {
			return nil, fmt.Errorf("list batches: %w", err)
		}
		b.FetchedAt = time.UnixMilli(fetchedAt).UTC()
		batches = append(batches, b)
	}
	return batches, rows.Err()
}
