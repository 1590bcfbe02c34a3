package trendstore

import (
	"database/sql"
	"fmt"
	"net"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	devenv "trending-etl/dev/env"

	"github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const DefaultFile = "<dev_state>/trending.db"

// Config selects and addresses a storage engine.
//
// sqlite uses File, libsql uses Url and AuthToken, mysql and postgres use
// Url as a complete DSN when it is given and the discrete fields otherwise.
type Config struct {
	Driver    string `json:"driver"`
	File      string `json:"file"`
	Url       string `json:"url"`
	AuthToken string `json:"auth_token"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	User      string `json:"user"`
	Password  string `json:"password"`
	Database  string `json:"database"`
}

func hostPort(host string, port, defaultPort int) string {
	if host == "" {
		host = "localhost"
	}
	if port == 0 {
		port = defaultPort
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

// DSN returns the data source name handed to sql.Open for the configured
// dialect. sqlite paths are resolved but not created.
func (c Config) DSN() (Dialect, string, error) {
	dialect, err := DialectByName(c.Driver)
	if err != nil {
		return Dialect{}, "", err
	}

	switch dialect.Name {
	case SQLite.Name:
		file := c.File
		if file == "" {
			file = DefaultFile
		}
		if file == ":memory:" {
			return dialect, file, nil
		}
		path, err := devenv.ResolvePath(file)
		if err != nil {
			return Dialect{}, "", err
		}
		return dialect, path, nil
	case Libsql.Name:
		if c.Url == "" {
			return Dialect{}, "", fmt.Errorf("libsql: a url was not specified")
		}
		if c.AuthToken == "" {
			return dialect, c.Url, nil
		}
		u, err := url.Parse(c.Url)
		if err != nil {
			return Dialect{}, "", fmt.Errorf("libsql: %w", err)
		}
		query := u.Query()
		query.Set("authToken", c.AuthToken)
		u.RawQuery = query.Encode()
		return dialect, u.String(), nil
	case MySQL.Name:
		if c.Url != "" {
			return dialect, c.Url, nil
		}
		cfg := mysql.NewConfig()
		cfg.User = c.User
		cfg.Passwd = c.Password
		cfg.Net = "tcp"
		cfg.Addr = hostPort(c.Host, c.Port, 3306)
		cfg.DBName = c.Database
		return dialect, cfg.FormatDSN(), nil
	case Postgres.Name:
		if c.Url != "" {
			return dialect, c.Url, nil
		}
		u := url.URL{
			Scheme: "postgres",
			Host:   hostPort(c.Host, c.Port, 5432),
			Path:   "/" + c.Database,
		}
		if c.User != "" {
			u.User = url.UserPassword(c.User, c.Password)
		}
		return dialect, u.String(), nil
	}
	return Dialect{}, "", fmt.Errorf("unsupported storage driver %q", c.Driver)
}

func openSqlite(path string) (*sql.DB, error) {
	if path != ":memory:" {
		err := os.MkdirAll(filepath.Dir(path), 0777)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open(SQLite.Driver, path)
	if err != nil {
		return nil, err
	}
	// sqlite serializes writers, a single connection avoids SQLITE_BUSY
	db.SetMaxOpenConns(1)
	_, err = db.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Open connects to the configured engine. It does not create the table,
// call EnsureSchema for that.
func Open(c Config) (Store, error) {
	dialect, dsn, err := c.DSN()
	if err != nil {
		return Store{}, err
	}

	var db *sql.DB
	if dialect.Name == SQLite.Name {
		db, err = openSqlite(dsn)
	} else {
		db, err = sql.Open(dialect.Driver, dsn)
	}
	if err != nil {
		return Store{}, fmt.Errorf("open %s: %w", dialect.Name, err)
	}
	return New(db, dialect), nil
}
