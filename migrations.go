package squadup

import "embed"

// MigrationsFS contains SQL migrations for both PostgreSQL and SQLite.
//
// Root files (data/sql/migrations/*.sql) target PostgreSQL and the
// data/sql/migrations/sqlite directory carries the SQLite overrides.
// go-persistence-bun selects the right set from the active dialect:
//
//	migrationsFS, _ := fs.Sub(squadup.MigrationsFS, "data/sql/migrations")
//	client.RegisterDialectMigrations(
//	    migrationsFS,
//	    persistence.WithDialectSourceLabel("."),
//	    persistence.WithValidationTargets("postgres", "sqlite"),
//	)
//
//go:embed data/sql/migrations/*.sql data/sql/migrations/sqlite/*.sql
var MigrationsFS embed.FS

// GetMigrationsFS exposes the embedded migrations to host applications.
func GetMigrationsFS() embed.FS {
	return MigrationsFS
}
