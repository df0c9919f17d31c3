package postgres

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"

	"github.com/heartmarshall/wh40k-terms/migrations"
)

// MigrationResult describes one applied or rolled back migration.
type MigrationResult struct {
	Version  int64
	Source   string
	Duration string
}

// OpenDB opens a database/sql handle for goose, which does not speak pgxpool.
func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

// NewMigrator returns a goose provider over the embedded migrations.
// The provider handles $$-delimited bodies, unlike the legacy goose.Up.
func NewMigrator(db *sql.DB) (*goose.Provider, error) {
	p, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return nil, fmt.Errorf("goose new provider: %w", err)
	}
	return p, nil
}

// Migrate applies all pending migrations.
func Migrate(ctx context.Context, db *sql.DB) ([]MigrationResult, error) {
	p, err := NewMigrator(db)
	if err != nil {
		return nil, err
	}

	results, err := p.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}
	return toResults(results), nil
}

// Rollback reverts the most recent migration.
func Rollback(ctx context.Context, db *sql.DB) (*MigrationResult, error) {
	p, err := NewMigrator(db)
	if err != nil {
		return nil, err
	}

	res, err := p.Down(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose down: %w", err)
	}
	if res == nil {
		return nil, nil
	}
	out := toResults([]*goose.MigrationResult{res})
	return &out[0], nil
}

func toResults(results []*goose.MigrationResult) []MigrationResult {
	out := make([]MigrationResult, 0, len(results))
	for _, r := range results {
		mr := MigrationResult{Duration: r.Duration.String()}
		if r.Source != nil {
			mr.Version = r.Source.Version
			mr.Source = r.Source.Path
		}
		out = append(out, mr)
	}
	return out
}
