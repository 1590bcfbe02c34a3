package trendstore

import (
	"errors"
	"fmt"
	"strings"
	"trending-etl/lib/trending"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"
)

// SchemaError is returned when the table could not be created for any
// reason other than it already existing.
type SchemaError struct {
	Table string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("ensure schema of %s: %v", e.Table, e.Err)
}

func (e *SchemaError) Unwrap() error {
	return e.Err
}

// PersistError names the record that stopped a batch, nothing from the
// batch was committed.
type PersistError struct {
	Index  int
	Record trending.Record
	Err    error
}

func (e *PersistError) Error() string {
	return fmt.Sprintf("persist record %d (%s): %v", e.Index, e.Record.FullName(), e.Err)
}

func (e *PersistError) Unwrap() error {
	return e.Err
}

const (
	mysqlTableExists    = 1050
	postgresTableExists = "42P07"
)

func isAlreadyExists(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlTableExists
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == postgresTableExists
	}
	return strings.Contains(strings.ToLower(err.Error()), "already exists")
}
