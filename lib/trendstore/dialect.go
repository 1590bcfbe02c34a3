package trendstore

import (
	"fmt"
	"strings"
)

const Table = "githubNormalInfo"

// declared widths of the text columns
const (
	NameWidth     = 100
	LanguageWidth = 40
	UrlWidth      = 200
	batchIdWidth  = 36
)

// Dialect captures what differs between the supported engines.
type Dialect struct {
	Name   string
	Driver string
	// numbered placeholders ($1, $2, ...) instead of ?
	Numbered    bool
	IfNotExists bool
}

var (
	SQLite   = Dialect{Name: "sqlite", Driver: "sqlite", IfNotExists: true}
	Libsql   = Dialect{Name: "libsql", Driver: "libsql", IfNotExists: true}
	MySQL    = Dialect{Name: "mysql", Driver: "mysql", IfNotExists: true}
	Postgres = Dialect{Name: "postgres", Driver: "pgx", Numbered: true, IfNotExists: true}
)

var dialects = map[string]Dialect{
	SQLite.Name:   SQLite,
	Libsql.Name:   Libsql,
	MySQL.Name:    MySQL,
	Postgres.Name: Postgres,
}

func DialectByName(name string) (Dialect, error) {
	if name == "" {
		return SQLite, nil
	}
	d, ok := dialects[strings.ToLower(name)]
	if !ok {
		return Dialect{}, fmt.Errorf("unsupported storage driver %q", name)
	}
	return d, nil
}

func (d Dialect) placeholder(n int) string {
	if d.Numbered {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

func (d Dialect) createTable() string {
	ifNotExists := ""
	if d.IfNotExists {
		ifNotExists = "IF NOT EXISTS "
	}
	return fmt.Sprintf(`CREATE TABLE %s%s (
	userName varchar(%d) NOT NULL,
	repoName varchar(%d) NOT NULL,
	star integer NOT NULL,
	fork integer NOT NULL,
	language varchar(%d) NOT NULL,
	todayStar integer NOT NULL,
	repoUrl varchar(%d) NOT NULL,
	batchId varchar(%d) NOT NULL,
	fetchedAt bigint NOT NULL
)`, ifNotExists, Table, NameWidth, NameWidth, LanguageWidth, UrlWidth, batchIdWidth)
}

const recordColumns = "userName, repoName, star, fork, language, todayStar, repoUrl"

func (d Dialect) insert() string {
	values := make([]string, 9)
	for i := range values {
		values[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf(
		"INSERT INTO %s (%s, batchId, fetchedAt) VALUES (%s)",
		Table, recordColumns, strings.Join(values, ", "),
	)
}

func (d Dialect) selectAll() string {
	return fmt.Sprintf("SELECT %s FROM %s", recordColumns, Table)
}

func (d Dialect) selectBatch() string {
	return fmt.Sprintf("SELECT %s FROM %s WHERE batchId = %s", recordColumns, Table, d.placeholder(1))
}

func (d Dialect) selectLastFetchedAt() string {
	return fmt.Sprintf("SELECT COALESCE(MAX(fetchedAt), 0) FROM %s", Table)
}

// fetchedAt is unique per batch, see Store.Save
func (d Dialect) selectLatestBatchId() string {
	return fmt.Sprintf("SELECT batchId FROM %s ORDER BY fetchedAt DESC LIMIT 1", Table)
}

func (d Dialect) selectBatches() string {
	return fmt.Sprintf(
		"SELECT batchId, fetchedAt, COUNT(*) FROM %s GROUP BY batchId, fetchedAt ORDER BY fetchedAt DESC",
		Table,
	)
}
