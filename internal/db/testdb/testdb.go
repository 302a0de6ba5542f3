package testdb

import (
	"context"
	"testing"
	"time"

	"github.com/chatkit/chatauth/internal/db"
	"github.com/jmoiron/sqlx"
)

// RunWhile opens an in-memory SQLite database for the duration of the test.
// It returns an empty database with all migrations applied.
func RunWhile(t *testing.T) *sqlx.DB {
	t.Helper()

	database, err := sqlx.Connect("sqlite", ":memory:?_pragma=foreign_keys(1)&_time_format=sqlite")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}

	// Every new connection to :memory: is a fresh database.
	database.SetMaxOpenConns(1)
	database.SetConnMaxLifetime(0)

	t.Cleanup(func() {
		err := database.Close()
		if err != nil {
			t.Errorf("failed to close database: %v", err)
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err = db.RunMigrations(ctx, database.DB, "sqlite")
	if err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	return database
}
