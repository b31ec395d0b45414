// Package dbtest opens in-memory SQLite databases carrying the squadup schema.
package dbtest

import (
	"database/sql"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

// NewDB returns a private in-memory database with foreign keys enforced and
// every SQLite migration applied.
func NewDB(t testing.TB) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", ":memory:?_fk=1")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})
	ApplyDDL(t, db)
	return db
}

// ApplyDDL executes the SQLite up migrations in file order.
func ApplyDDL(t testing.TB, db *bun.DB) {
	t.Helper()
	files, err := filepath.Glob(filepath.Join(migrationsDir(), "sqlite", "*.up.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, files)
	for _, file := range files {
		content, err := os.ReadFile(file)
		require.NoError(t, err)
		for _, stmt := range SplitStatements(string(content)) {
			_, err := db.Exec(stmt)
			require.NoError(t, err, stmt)
		}
	}
}

// SplitStatements breaks a migration file into executable statements,
// dropping blank lines and comments.
func SplitStatements(sql string) []string {
	var builder strings.Builder
	var statements []string
	for _, line := range strings.Split(sql, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "--") {
			continue
		}
		builder.WriteString(line)
		if strings.HasSuffix(line, ";") {
			statements = append(statements, strings.TrimSuffix(builder.String(), ";"))
			builder.Reset()
		} else {
			builder.WriteString(" ")
		}
	}
	if builder.Len() > 0 {
		statements = append(statements, builder.String())
	}
	return statements
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "data", "sql", "migrations")
}
