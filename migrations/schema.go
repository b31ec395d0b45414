package migrations

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// TableCheck names a table and the columns the handlers read or write.
type TableCheck struct {
	Table   string
	Columns []string
}

// DefaultTableChecks lists the columns squadup depends on.
var DefaultTableChecks = []TableCheck{
	{Table: "profiles", Columns: []string{"id", "user_id", "firebase_uid", "email", "display_name", "avatar_url", "onboarding_data", "last_seen_at"}},
	{Table: "squads", Columns: []string{"id", "name", "invite_code", "visibility", "max_members", "member_count", "expert_names", "total_distance_km", "total_activities"}},
	{Table: "squad_members", Columns: []string{"id", "squad_id", "profile_id", "role", "joined_at", "total_activities", "total_distance_km", "last_activity_at", "notifications_enabled"}},
	{Table: "squad_messages", Columns: []string{"id", "squad_id", "profile_id", "type", "content", "metadata", "reply_to_id", "edited_at", "deleted_at", "created_at"}},
	{Table: "message_reactions", Columns: []string{"id", "message_id", "profile_id", "emoji", "created_at"}},
	{Table: "message_read_receipts", Columns: []string{"message_id", "profile_id", "read_at"}},
	{Table: "activities", Columns: []string{"id", "profile_id", "activity_type", "distance_km", "started_at"}},
	{Table: "activity_checkins", Columns: []string{"id", "squad_id", "activity_id", "profile_id", "message_id", "created_at"}},
}

// SchemaOption customizes schema validation.
type SchemaOption func(*schemaConfig)

type schemaConfig struct {
	checks []TableCheck
}

// WithTableChecks replaces the default checks with a custom list.
func WithTableChecks(checks []TableCheck) SchemaOption {
	return func(cfg *schemaConfig) {
		cfg.checks = checks
	}
}

// SchemaValidationError summarizes missing tables and columns.
type SchemaValidationError struct {
	MissingTables  []string
	MissingColumns map[string][]string
}

func (e *SchemaValidationError) Error() string {
	if e == nil {
		return ""
	}
	parts := make([]string, 0, 2)
	if len(e.MissingTables) > 0 {
		parts = append(parts, "missing tables: "+strings.Join(e.MissingTables, ", "))
	}
	if len(e.MissingColumns) > 0 {
		tables := make([]string, 0, len(e.MissingColumns))
		for table := range e.MissingColumns {
			tables = append(tables, table)
		}
		sort.Strings(tables)
		cols := make([]string, 0, len(tables))
		for _, table := range tables {
			missing := e.MissingColumns[table]
			sort.Strings(missing)
			cols = append(cols, fmt.Sprintf("%s(%s)", table, strings.Join(missing, ", ")))
		}
		parts = append(parts, "missing columns: "+strings.Join(cols, "; "))
	}
	if len(parts) == 0 {
		return "schema validation failed"
	}
	return "schema validation failed: " + strings.Join(parts, "; ")
}

// NormalizeDialect maps driver aliases onto "postgres" or "sqlite".
func NormalizeDialect(dialect string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(dialect)) {
	case "postgres", "postgresql", "pg":
		return "postgres", nil
	case "sqlite", "sqlite3":
		return "sqlite", nil
	default:
		return "", fmt.Errorf("migrations: unsupported dialect %q", dialect)
	}
}

// ValidateSchema ensures the database exposes every table and column the
// handlers use. Run it after migrations to catch a partially applied schema.
func ValidateSchema(ctx context.Context, db *sql.DB, dialect string, opts ...SchemaOption) error {
	if db == nil {
		return errors.New("migrations: db required")
	}
	normalized, err := NormalizeDialect(dialect)
	if err != nil {
		return err
	}

	cfg := schemaConfig{checks: DefaultTableChecks}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	missingTables := make([]string, 0)
	missingColumns := make(map[string][]string)
	for _, check := range cfg.checks {
		if strings.TrimSpace(check.Table) == "" {
			continue
		}
		cols, err := fetchColumns(ctx, db, normalized, check.Table)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			missingTables = append(missingTables, check.Table)
			continue
		}
		for _, col := range check.Columns {
			name := strings.ToLower(strings.TrimSpace(col))
			if name != "" && !cols[name] {
				missingColumns[check.Table] = append(missingColumns[check.Table], name)
			}
		}
	}

	if len(missingTables) == 0 && len(missingColumns) == 0 {
		return nil
	}
	sort.Strings(missingTables)
	return &SchemaValidationError{MissingTables: missingTables, MissingColumns: missingColumns}
}

func fetchColumns(ctx context.Context, db *sql.DB, dialect, table string) (map[string]bool, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if dialect == "postgres" {
		rows, err = db.QueryContext(ctx, `
			SELECT column_name
			FROM information_schema.columns
			WHERE table_schema = 'public' AND table_name = $1
		`, table)
	} else {
		rows, err = db.QueryContext(ctx, `SELECT name FROM pragma_table_info(?)`, table)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		cols[strings.ToLower(name)] = true
	}
	return cols, rows.Err()
}
