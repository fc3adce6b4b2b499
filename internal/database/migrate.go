package database

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/rs/zerolog/log"
)

// MigrationsDir is the migrate source URL for the development schema.
var MigrationsDir = "file://migrations"

// SchemaVersion reports the applied migration version. Zero means no migration ran yet.
type SchemaVersion struct {
	Version uint
	Dirty   bool
}

func withMigrator(databaseURL string, fn func(*migrate.Migrate) error) error {
	m, err := migrate.New(MigrationsDir, databaseURL)
	if err != nil {
		return fmt.Errorf("open migrations %s: %w", MigrationsDir, err)
	}
	defer m.Close()
	return fn(m)
}

func RunMigrations(databaseURL string) error {
	return withMigrator(databaseURL, func(m *migrate.Migrate) error {
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("apply fact schema: %w", err)
		}
		v, err := version(m)
		if err != nil {
			return err
		}
		log.Info().Uint("version", v.Version).Bool("dirty", v.Dirty).Msg("fact schema up to date")
		return nil
	})
}

func RollbackMigrations(databaseURL string) error {
	return withMigrator(databaseURL, func(m *migrate.Migrate) error {
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			return fmt.Errorf("drop fact schema: %w", err)
		}
		log.Info().Str("source", MigrationsDir).Msg("fact schema rolled back")
		return nil
	})
}

func CurrentSchemaVersion(databaseURL string) (SchemaVersion, error) {
	var v SchemaVersion
	err := withMigrator(databaseURL, func(m *migrate.Migrate) error {
		var err error
		v, err = version(m)
		return err
	})
	return v, err
}

func version(m *migrate.Migrate) (SchemaVersion, error) {
	v, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return SchemaVersion{}, nil
	}
	if err != nil {
		return SchemaVersion{}, fmt.Errorf("read schema version: %w", err)
	}
	return SchemaVersion{Version: v, Dirty: dirty}, nil
}
