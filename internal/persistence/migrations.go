package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratepgx "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"

	"github.com/spec-kit/todo-service/internal/persistence/migrations"
)

// migrator is the part of *migrate.Migrate that owns resources.
type migrator interface {
	Close() (sourceErr error, databaseErr error)
}

// RunMigrations applies the embedded schema migrations that are not yet applied.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool, logger *zap.Logger) (err error) {
	if pool == nil {
		logger.Warn("no postgres pool available; skipping migrations")
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	db := stdlib.OpenDBFromPool(pool)
	driver, err := migratepgx.WithInstance(db, &migratepgx.Config{})
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("migration driver: %w", err)
	}

	source, err := iofs.New(migrations.Migrations, ".")
	if err != nil {
		_ = driver.Close()
		return fmt.Errorf("migration source: %w", err)
	}

	instance, err := migrate.NewWithInstance("iofs", source, "pgx5", driver)
	if err != nil {
		_ = source.Close()
		_ = driver.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	// Closing the instance returns the driver's connection to the pool.
	defer func() {
		if closeErr := closeMigrator(instance); closeErr != nil {
			logger.Warn("closing migrator", zap.Error(closeErr))
			if err == nil {
				err = closeErr
			}
		}
	}()

	if err := instance.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := instance.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return fmt.Errorf("migration version: %w", err)
	}
	logger.Info("migrations applied", zap.Uint("version", version), zap.Bool("dirty", dirty))
	return nil
}

func closeMigrator(m migrator) error {
	sourceErr, databaseErr := m.Close()
	var errs []error
	if sourceErr != nil {
		errs = append(errs, fmt.Errorf("migration source: %w", sourceErr))
	}
	if databaseErr != nil {
		errs = append(errs, fmt.Errorf("migration database: %w", databaseErr))
	}
	return errors.Join(errs...)
}
