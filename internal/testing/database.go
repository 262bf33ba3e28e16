package testing

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/teranos/topicdb/db"
)

// CreateTestDB creates a file-backed SQLite test database with the topic map
// schema applied. A file is used instead of :memory: so that every pooled
// connection sees the same data.
// Automatically registers cleanup via t.Cleanup().
func CreateTestDB(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "topicdb-test.db")
	conn, err := db.Open(path, nil)
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		conn.Close()
	})

	if err := db.CreateDatabase(context.Background(), conn, nil); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}

	return conn
}
