package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"trending-etl/lib/telemetry"

	_ "modernc.org/sqlite"
)

type SqliteParams struct {
	Name string
	// if unspecified, it will use "state.db"
	File string
}

type SqliteResult struct {
	DB   *sql.DB
	Path string
}

// OpenSqlite opens a file-backed sqlite database inside the test's temp
// directory. Every connection of a `:memory:` database is a separate
// database, so tests that exercise the connection pool need a file.
func OpenSqlite(t testing.TB, params SqliteParams) (SqliteResult, func()) {
	cleanup := telemetry.SetupForTesting(t, fmt.Sprintf("test:%s", params.Name))

	file := params.File
	if file == "" {
		file = "state.db"
	}
	dbpath := filepath.Join(t.TempDir(), file)

	db, err := sql.Open("sqlite", dbpath)
	if err != nil {
		t.Fatal(err)
	}
	db.SetMaxOpenConns(1)

	return SqliteResult{DB: db, Path: dbpath}, func() {
		db.Close()
		cleanup()
	}
}
