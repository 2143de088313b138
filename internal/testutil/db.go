// Package testutil builds throwaway in-memory databases for package tests.
package testutil

import (
	"context"
	"testing"

	"github.com/Skotchmaster/vayez/internal/repo"
	pkgdb "github.com/Skotchmaster/vayez/pkg/db"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var DefaultRoles = []string{"admin", "user"}

// NewDB returns a migrated sqlite database seeded with DefaultRoles. Each
// call gets its own named in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := pkgdb.Open(context.Background(), pkgdb.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("failed to open in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = pkgdb.Close(db) })

	r := &repo.GormRepo{DB: db}
	if err := r.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	if err := r.EnsureRoles(context.Background(), DefaultRoles); err != nil {
		t.Fatalf("failed to seed roles: %v", err)
	}

	return db
}
