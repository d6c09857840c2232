package repository

import (
	"path/filepath"
	"testing"

	"finplan/internal/database"
	"finplan/internal/models"
)

func newTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	// Keep a single connection so concurrent test writers queue instead of
	// hitting SQLITE_BUSY.
	db.DB.SetMaxOpenConns(1)

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *database.DB, email string) *models.User {
	t.Helper()

	user, err := NewUserRepository(db).CreateUser(email, "$2a$10$fakehashfakehashfakehash", "Test", "User")
	if err != nil {
		t.Fatalf("failed to create test user: %v", err)
	}
	return user
}
