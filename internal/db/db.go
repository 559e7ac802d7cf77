package db

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

var DB *sqlx.DB

const (
	connectAttempts = 10
	connectBackoff  = 2 * time.Second
)

// Init opens the PostgreSQL pool and assigns it to DB. The roster database is
// usually started alongside the server, so connection failures are retried
// with a fixed backoff before giving up.
func Init(databaseURL string) error {
	var err error
	for attempt := 1; attempt <= connectAttempts; attempt++ {
		DB, err = sqlx.Connect("postgres", databaseURL)
		if err == nil {
			log.Info().Msg("connected to database")
			return nil
		}
		log.Warn().Err(err).
			Int("attempt", attempt).
			Dur("backoff", connectBackoff).
			Msg("database not ready, retrying")
		time.Sleep(connectBackoff)
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", connectAttempts, err)
}

// RunMigrations executes every *.up.sql file under migrationsPath in lexical
// order. Migrations are written to be re-runnable (CREATE ... IF NOT EXISTS),
// so the server applies them on every boot.
func RunMigrations(migrationsPath string) error {
	files, err := filepath.Glob(filepath.Join(migrationsPath, "*.up.sql"))
	if err != nil {
		return fmt.Errorf("listing migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		stmt, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading migration %q: %w", file, err)
		}
		if len(stmt) == 0 {
			continue
		}
		if _, err := DB.Exec(string(stmt)); err != nil {
			return fmt.Errorf("applying migration %q: %w", file, err)
		}
		log.Debug().Str("file", filepath.Base(file)).Msg("migration applied")
	}
	return nil
}
