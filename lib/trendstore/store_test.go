package trendstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
	"trending-etl/lib/testutil"
	"trending-etl/lib/trending"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
)

var sortRecords = cmpopts.SortSlices(func(a, b trending.Record) bool {
	if a.FullName() != b.FullName() {
		return a.FullName() < b.FullName()
	}
	return a.Star < b.Star
})

func setup(t testing.TB) (Store, func()) {
	res, cleanup := testutil.OpenSqlite(t, testutil.SqliteParams{Name: "trendstore"})
	return New(res.DB, SQLite), cleanup
}

func sampleRecords() []trending.Record {
	return []trending.Record{
		{
			UserName:  "golang",
			RepoName:  "go",
			Star:      120345,
			Fork:      17654,
			Language:  "Go",
			TodayStar: 1234,
			RepoUrl:   "https://github.com/golang/go",
		},
		{
			UserName:  "octocat",
			RepoName:  "Hello-World",
			Star:      1024,
			Fork:      512,
			Language:  trending.None,
			TodayStar: 37,
			RepoUrl:   "https://github.com/octocat/Hello-World",
		},
		{
			UserName:  "o'brien",
			RepoName:  `drop"; table--`,
			Star:      0,
			Fork:      0,
			Language:  "C, C++",
			TodayStar: 0,
			RepoUrl:   "https://github.com/o'brien/x",
		},
		{
			UserName:  "日本語",
			RepoName:  "répo",
			Star:      3,
			Fork:      1,
			Language:  "Rust",
			TodayStar: 2,
			RepoUrl:   "https://github.com/%E6%97%A5/r",
		},
	}
}

// fixedClock returns a clock that advances by one second on every call.
func fixedClock(start time.Time) func() time.Time {
	current := start
	return func() time.Time {
		now := current
		current = current.Add(time.Second)
		return now
	}
}

func TestEnsureSchemaIdempotent(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.EnsureSchema(ctx))
	_, err := store.Save(ctx, sampleRecords()[:1])
	require.NoError(t, err)

	require.NoError(t, store.EnsureSchema(ctx))

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Len(t, loaded, 1)

	rows, err := store.db.QueryContext(ctx, fmt.Sprintf("SELECT name FROM pragma_table_info('%s')", Table))
	require.NoError(t, err)
	defer rows.Close()
	var columns []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		columns = append(columns, name)
	}
	require.NoError(t, rows.Err())
	require.Equal(t, []string{
		"userName", "repoName", "star", "fork", "language",
		"todayStar", "repoUrl", "batchId", "fetchedAt",
	}, columns)
}

func TestEnsureSchemaAlreadyExists(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	plain := SQLite
	plain.IfNotExists = false
	strict := New(store.db, plain)

	require.NoError(t, strict.EnsureSchema(ctx))
	require.NoError(t, strict.EnsureSchema(ctx))
}

func TestEnsureSchemaFailure(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	_, err := store.db.ExecContext(ctx, "CREATE TABLE other (x integer)")
	require.NoError(t, err)
	_, err = store.db.ExecContext(ctx, fmt.Sprintf("CREATE INDEX %s ON other (x)", Table))
	require.NoError(t, err)

	err = store.EnsureSchema(ctx)
	var schemaErr *SchemaError
	require.ErrorAs(t, err, &schemaErr)
	require.Equal(t, Table, schemaErr.Table)
}

func TestRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		records []trending.Record
	}{
		{name: "empty", records: nil},
		{name: "single", records: sampleRecords()[:1]},
		{name: "many", records: sampleRecords()},
		{name: "duplicates", records: append(sampleRecords()[:2], sampleRecords()[:2]...)},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, cleanup := setup(t)
			defer cleanup()
			ctx := context.Background()

			require.NoError(t, store.EnsureSchema(ctx))
			batch, err := store.Save(ctx, tc.records)
			require.NoError(t, err)
			require.Equal(t, len(tc.records), batch.Rows)

			loaded, err := store.LoadAll(ctx)
			require.NoError(t, err)
			require.Len(t, loaded, len(tc.records))

			diff := cmp.Diff(trending.Dataset(tc.records), loaded, sortRecords, cmpopts.EquateEmpty())
			if diff != "" {
				t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestSaveEmptyIsNoop(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.EnsureSchema(ctx))
	batch, err := store.Save(ctx, []trending.Record{})
	require.NoError(t, err)
	require.Equal(t, Batch{}, batch)

	batches, err := store.Batches(ctx)
	require.NoError(t, err)
	require.Empty(t, batches)
}

func TestSaveAtomic(t *testing.T) {
	overlong := sampleRecords()[0]
	overlong.UserName = strings.Repeat("a", NameWidth+1)

	negative := sampleRecords()[1]
	negative.Star = -1

	noLanguage := sampleRecords()[1]
	noLanguage.Language = ""

	cases := []struct {
		name    string
		invalid trending.Record
	}{
		{name: "overlong name", invalid: overlong},
		{name: "negative stars", invalid: negative},
		{name: "empty language", invalid: noLanguage},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store, cleanup := setup(t)
			defer cleanup()
			ctx := context.Background()

			require.NoError(t, store.EnsureSchema(ctx))
			existing := sampleRecords()[:1]
			_, err := store.Save(ctx, existing)
			require.NoError(t, err)

			records := sampleRecords()
			records = append(records[:2], tc.invalid, records[2])

			_, err = store.Save(ctx, records)
			var persistErr *PersistError
			require.ErrorAs(t, err, &persistErr)
			require.Equal(t, 2, persistErr.Index)
			require.Equal(t, tc.invalid, persistErr.Record)

			loaded, err := store.LoadAll(ctx)
			require.NoError(t, err)
			require.Empty(t, cmp.Diff(trending.Dataset(existing), loaded))
		})
	}
}

func TestSaveRollsBackOnEngineFailure(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	require.NoError(t, store.EnsureSchema(ctx))
	_, err := store.db.ExecContext(ctx, fmt.Sprintf(`
		CREATE TRIGGER reject_boom BEFORE INSERT ON %s
		WHEN NEW.repoName = 'boom'
		BEGIN
			SELECT RAISE(ABORT, 'boom rejected');
		END`, Table))
	require.NoError(t, err)

	boom := sampleRecords()[0]
	boom.RepoName = "boom"
	records := append(sampleRecords()[:3], boom)

	_, err = store.Save(ctx, records)
	var persistErr *PersistError
	require.ErrorAs(t, err, &persistErr)
	require.Equal(t, 3, persistErr.Index)
	require.ErrorContains(t, err, "boom rejected")

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Empty(t, loaded)
}

func TestSaveWithoutSchema(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()

	_, err := store.Save(context.Background(), sampleRecords())
	require.Error(t, err)

	require.ErrorContains(t, err, "save batch")
	require.ErrorContains(t, err, "no such table")

	var persistErr *PersistError
	require.False(t, errors.As(err, &persistErr))
}

func TestSaveSameInstant(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	instant := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	store = store.WithClock(func() time.Time { return instant })
	require.NoError(t, store.EnsureSchema(ctx))

	var saved []Batch
	for i := 0; i < 3; i++ {
		batch, err := store.Save(ctx, sampleRecords()[i:i+1])
		require.NoError(t, err)
		saved = append(saved, batch)
	}
	require.Equal(t, instant, saved[0].FetchedAt)
	require.Equal(t, instant.Add(time.Millisecond), saved[1].FetchedAt)
	require.Equal(t, instant.Add(2*time.Millisecond), saved[2].FetchedAt)

	latest, err := store.LoadLatest(ctx)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(trending.Dataset(sampleRecords()[2:3]), latest))

	batches, err := store.Batches(ctx)
	require.NoError(t, err)
	require.Equal(t, []Batch{saved[2], saved[1], saved[0]}, batches)
}

func TestBatchesAndLatest(t *testing.T) {
	store, cleanup := setup(t)
	defer cleanup()
	ctx := context.Background()

	start := time.Date(2024, 7, 1, 12, 0, 0, 0, time.UTC)
	store = store.WithClock(fixedClock(start))

	latest, err := store.LoadLatest(ctx)
	require.Error(t, err)

	require.NoError(t, store.EnsureSchema(ctx))

	latest, err = store.LoadLatest(ctx)
	require.NoError(t, err)
	require.Empty(t, latest)

	first, err := store.Save(ctx, sampleRecords()[:3])
	require.NoError(t, err)
	second, err := store.Save(ctx, sampleRecords()[3:])
	require.NoError(t, err)
	require.NotEqual(t, first.Id, second.Id)

	batches, err := store.Batches(ctx)
	require.NoError(t, err)
	require.Equal(t, []Batch{
		{Id: second.Id, FetchedAt: start.Add(time.Second), Rows: 1},
		{Id: first.Id, FetchedAt: start, Rows: 3},
	}, batches)

	latest, err = store.LoadLatest(ctx)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(trending.Dataset(sampleRecords()[3:]), latest))

	all, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(trending.Dataset(sampleRecords()), all, sortRecords))
}

func TestStoreReopen(t *testing.T) {
	ctx := context.Background()
	cfg := Config{Driver: "sqlite", File: t.TempDir() + "/nested/trending.db"}

	store, err := Open(cfg)
	require.NoError(t, err)
	require.NoError(t, store.EnsureSchema(ctx))
	_, err = store.Save(ctx, sampleRecords())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = Open(cfg)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.EnsureSchema(ctx))

	loaded, err := store.LoadAll(ctx)
	require.NoError(t, err)
	require.Empty(t, cmp.Diff(trending.Dataset(sampleRecords()), loaded, sortRecords))
}
