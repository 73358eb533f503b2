// Package store wires the bot's local SQLite database: it runs the embedded
// migrations and hands out one repository per persisted entity.
//
// Every mutating repository call issues its SQL immediately; that
// write-through-on-mutation discipline is the durability contract, there is
// no batching layer to lose more than the in-flight record on a crash.
package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"github.com/hearthbot/hearth/internal/store/checkins"
	"github.com/hearthbot/hearth/internal/store/configs"
	"github.com/hearthbot/hearth/internal/store/grants"
	"github.com/hearthbot/hearth/internal/store/migrations"
	"github.com/hearthbot/hearth/internal/store/stickies"
	"github.com/hearthbot/hearth/internal/store/tokens"
	"github.com/hearthbot/hearth/internal/store/ventlog"
)

// Repositories bundles one repository per persisted entity plus the raw
// handle, which the access service needs for its redemption transaction.
type Repositories struct {
	Configs  configs.Repository
	Checkins checkins.Repository
	Stickies stickies.Repository
	VentLog  ventlog.Repository
	Tokens   tokens.Repository
	Grants   grants.Repository
	DB       *sql.DB
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens the SQLite database at dsn, migrates it and returns the
// repository set.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &Repositories{
		Configs:  configs.NewSQLiteRepository(db),
		Checkins: checkins.NewSQLiteRepository(db),
		Stickies: stickies.NewSQLiteRepository(db),
		VentLog:  ventlog.NewSQLiteRepository(db),
		Tokens:   tokens.NewSQLiteRepository(db),
		Grants:   grants.NewSQLiteRepository(db),
		DB:       db,
	}, nil
}
