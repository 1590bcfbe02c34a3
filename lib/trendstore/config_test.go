package trendstore

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDSN(t *testing.T) {
	cases := []struct {
		name    string
		config  Config
		dialect Dialect
		dsn     string
	}{
		{
			name:    "sqlite memory",
			config:  Config{File: ":memory:"},
			dialect: SQLite,
			dsn:     ":memory:",
		},
		{
			name:    "sqlite absolute",
			config:  Config{Driver: "sqlite", File: "/tmp/trending.db"},
			dialect: SQLite,
			dsn:     "/tmp/trending.db",
		},
		{
			name:    "libsql",
			config:  Config{Driver: "libsql", Url: "libsql://trending.turso.io", AuthToken: "secret"},
			dialect: Libsql,
			dsn:     "libsql://trending.turso.io?authToken=secret",
		},
		{
			name: "mysql fields",
			config: Config{
				Driver:   "mysql",
				Host:     "db",
				User:     "root",
				Password: "pw",
				Database: "github",
			},
			dialect: MySQL,
			dsn:     "root:pw@tcp(db:3306)/github",
		},
		{
			name:    "mysql url",
			config:  Config{Driver: "MySQL", Url: "u:p@tcp(h:1)/d"},
			dialect: MySQL,
			dsn:     "u:p@tcp(h:1)/d",
		},
		{
			name: "postgres fields",
			config: Config{
				Driver:   "postgres",
				Port:     6543,
				User:     "trend",
				Password: "pw",
				Database: "github",
			},
			dialect: Postgres,
			dsn:     "postgres://trend:pw@localhost:6543/github",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dialect, dsn, err := tc.config.DSN()
			require.NoError(t, err)
			require.Equal(t, tc.dialect, dialect)
			require.Equal(t, tc.dsn, dsn)
		})
	}
}

func TestDSNErrors(t *testing.T) {
	_, _, err := Config{Driver: "oracle"}.DSN()
	require.ErrorContains(t, err, "unsupported storage driver")

	_, _, err = Config{Driver: "libsql"}.DSN()
	require.ErrorContains(t, err, "url was not specified")
}

func TestDialectStatements(t *testing.T) {
	require.Equal(
		t,
		"INSERT INTO githubNormalInfo (userName, repoName, star, fork, language, todayStar, repoUrl, batchId, fetchedAt) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)",
		SQLite.insert(),
	)
	require.Equal(
		t,
		"INSERT INTO githubNormalInfo (userName, repoName, star, fork, language, todayStar, repoUrl, batchId, fetchedAt) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)",
		Postgres.insert(),
	)
	require.Contains(t, MySQL.createTable(), "CREATE TABLE IF NOT EXISTS githubNormalInfo")
	require.Contains(t, MySQL.createTable(), "userName varchar(100) NOT NULL")
	require.Contains(t, MySQL.createTable(), "language varchar(40) NOT NULL")
	require.Contains(t, MySQL.createTable(), "repoUrl varchar(200) NOT NULL")
}
