package app

import (
	"embed"
	"errors"
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies all pending embedded migrations. Already-current schemas
// are not an error.
func Migrate(cfg Config, log Logger) error {
	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, pgx5URL(cfg.DatabaseURL))
	if err != nil {
		return fmt.Errorf("migrate init: %w", err)
	}
	defer func() {
		serr, derr := m.Close()
		if serr != nil {
			log.Error("db.migrate.close.fail", "err", serr)
		}
		if derr != nil {
			log.Error("db.migrate.close.fail", "err", derr)
		}
	}()

	if err := m.Up(); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			log.Info("db.migrate.noop")
			return nil
		}
		return fmt.Errorf("migrate up: %w", err)
	}

	log.Info("db.migrate.applied")
	return nil
}

// pgx5URL rewrites a postgres:// URL to the pgx5 driver scheme golang-migrate
// registers.
func pgx5URL(databaseURL string) string {
	for _, scheme := range []string{"postgres://", "postgresql://"} {
		if rest, ok := strings.CutPrefix(databaseURL, scheme); ok {
			return "pgx5://" + rest
		}
	}
	return databaseURL
}
