package storage

import "testing"

// NewTestDB opens a migrated in-memory database for tests in other packages.
func NewTestDB(t testing.TB) *DB {
	t.Helper()

	config := DefaultConfig(MemoryPath)
	config.AutoMigrate = true
	db, err := Open(config)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}
