package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq" // postgres driver
)

// NewPostgresConnection opens and verifies a Postgres connection pool.
func NewPostgresConnection(databaseURL string) (*sql.DB, error) {
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

// Migrate creates the schema if it does not exist yet.
func Migrate(ctx context.Context, db *sql.DB) error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS expenses (
			id          TEXT PRIMARY KEY,
			description TEXT NOT NULL,
			amount      DOUBLE PRECISION NOT NULL CHECK (amount > 0),
			currency    CHAR(3) NOT NULL,
			paid_by     TEXT NOT NULL,
			group_id    TEXT,
			split_type  TEXT NOT NULL,
			status      TEXT NOT NULL,
			created_at  TIMESTAMPTZ NOT NULL,
			updated_at  TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS expense_participants (
			expense_id  TEXT NOT NULL REFERENCES expenses(id) ON DELETE CASCADE,
			ordinal     INTEGER NOT NULL,
			user_id     TEXT NOT NULL,
			amount      DOUBLE PRECISION,
			percentage  DOUBLE PRECISION,
			paid_amount DOUBLE PRECISION NOT NULL DEFAULT 0,
			owes_amount DOUBLE PRECISION NOT NULL CHECK (owes_amount >= 0),
			PRIMARY KEY (expense_id, ordinal)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_group_id ON expenses (group_id)`,
		`CREATE INDEX IF NOT EXISTS idx_expenses_paid_by ON expenses (paid_by)`,
	}

	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to run migration: %w", err)
		}
	}
	return nil
}
