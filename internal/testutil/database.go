// Package testutil provides test helpers for a migrated in-memory ledger
// and fluent seeding of ledger fixtures.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/celengan/internal/storage"
)

// TestDB represents a test database with associated test utilities.
type TestDB struct {
	Storage *storage.SQLiteStorage
	t       *testing.T
}

// SetupTestDB creates a migrated in-memory database and closes it when the
// test ends. now pins the ledger clock; nil uses the wall clock.
func SetupTestDB(t *testing.T, now func() time.Time) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	store.SetClock(now)

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{Storage: store, t: t}
}

// Seed writes the builder's fixtures into the database or fails the test.
func (db *TestDB) Seed(b *LedgerBuilder) *TestDB {
	db.t.Helper()
	if err := b.Build(context.Background(), db.Storage); err != nil {
		db.t.Fatalf("failed to seed ledger: %v", err)
	}
	return db
}

// Snapshot returns the user's snapshot or fails the test.
func (db *TestDB) Snapshot(userID string) SnapshotView {
	db.t.Helper()
	snap, err := db.Storage.GetFinancialSnapshot(context.Background(), userID)
	if err != nil {
		db.t.Fatalf("failed to get snapshot: %v", err)
	}
	return SnapshotView{snap}
}
