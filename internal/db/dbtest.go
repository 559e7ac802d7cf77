package db

import (
	"errors"
	"os"
)

// TestStore is populated by InitTestDB for suites that exercise real SQL.
// Suites that only need Store semantics use NewMemStore instead.
var TestStore Store

// InitTestDB connects to TEST_DATABASE_URL and applies migrations so
// integration suites can run against a disposable database.
func InitTestDB(migrationsPath string) error {
	databaseURL := os.Getenv("TEST_DATABASE_URL")
	if databaseURL == "" {
		return errors.New("TEST_DATABASE_URL is not set")
	}
	if err := Init(databaseURL); err != nil {
		return err
	}
	if err := RunMigrations(migrationsPath); err != nil {
		return err
	}
	TestStore = NewStore(DB)
	return nil
}
