// Package db provides database connectivity and migration functionality for the
// jobbee application. It handles establishing the connection pool, enabling the
// PostgreSQL extensions the queries rely on, and running schema migrations.
// This package centralizes database concerns; the Express implementation this
// port follows had a thin `connectDatabase()` wrapper around the Mongoose
// driver playing the same role.
package db

import (
	"context"
	"fmt"
	// `time` is used for setting timeouts and connection pool configurations.
	"time"

	// `golang-migrate` is a popular library for database migrations in Go.
	// It supports various database drivers and migration source formats (like SQL files).
	"github.com/golang-migrate/migrate/v4"
	// Imported for its side effect: registering the file source driver.
	_ "github.com/golang-migrate/migrate/v4/source/file"
	// Imported for its side effect: registering the postgres database driver.
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	// `migrate`'s postgres driver uses `database/sql` with `lib/pq` under the hood.
	_ "github.com/lib/pq"
	// `pgxpool` is part of the `jackc/pgx` suite, providing a robust connection pool for PostgreSQL.
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/user/jobbee-go/apperror"
	"github.com/user/jobbee-go/config"
)

// NewPool establishes a pgx connection pool to PostgreSQL using the provided
// configuration and verifies connectivity with a ping before returning it.
func NewPool(cfg *config.PoolConfig) (*pgxpool.Pool, error) {
	dsn := fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable&pool_max_conns=%d&pool_max_conn_idle_time=%s&pool_max_conn_lifetime=%s",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
		cfg.MaxSize,
		(10 * time.Minute).String(),
		(30 * time.Minute).String(),
	)

	// `pgxpool.ParseConfig` parses the DSN string into a `pgxpool.Config` struct.
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error parsing DSN for database %s", cfg.DBName), err)
	}

	poolConfig.MaxConns = int32(cfg.MaxSize)
	poolConfig.MaxConnIdleTime = 10 * time.Minute
	poolConfig.MaxConnLifetime = 30 * time.Minute

	// Use a context with a timeout for the pool creation process.
	// This prevents indefinite blocking if the database is unreachable.
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error creating pgxpool for database %s", cfg.DBName), err)
	}

	// Verify the connection by pinging
	pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer pingCancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close() // Clean up on connection failure
		return nil, apperror.NewDatabaseError(fmt.Sprintf("error connecting to the database %s with pgxpool", cfg.DBName), err)
	}

	return pool, nil
}

// getDSN constructs a DSN string from PoolConfig, suitable for golang-migrate.
// migrate's postgres driver typically uses a lib/pq format DSN.
func getDSN(cfg *config.PoolConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName,
	)
}

// EnableExtensions enables the PostgreSQL extensions the jobbee queries rely on:
// cube and earthdistance back the geo-radius posting search, pg_trgm assists
// trigram matching over posting text.
func EnableExtensions(pool *pgxpool.Pool) error {
	extensions := []string{"pg_trgm", "cube", "earthdistance"}

	for _, ext := range extensions {
		// `CREATE EXTENSION IF NOT EXISTS` is idempotent; it won't error if the extension already exists.
		query := fmt.Sprintf("CREATE EXTENSION IF NOT EXISTS %s;", ext)

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		_, err := pool.Exec(ctx, query)
		cancel() // Cancel after each exec; a single deferred cancel would leak contexts across iterations
		if err != nil {
			return apperror.NewDatabaseError(fmt.Sprintf("failed to create extension %s", ext), err)
		}
	}

	return nil
}

// RunMigrations applies any pending database migrations from the specified
// migrations directory, using golang-migrate for versioning and execution.
// The directory holds numbered up/down SQL files (e.g. 000001_create_users.up.sql).
func RunMigrations(cfg *config.PoolConfig, migrationsPath string) error {
	dsn := getDSN(cfg)

	m, err := migrate.New(
		// `file://` specifies that migrations are read from the local filesystem.
		"file://"+migrationsPath,
		dsn,
	)
	if err != nil {
		return apperror.NewDatabaseError("failed to create migrator", err)
	}
	// m.Close() returns two errors, one for the source and one for the database;
	// neither failing is fatal at this point, but both are worth a warning.
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			if srcErr != nil {
				fmt.Printf("Warning: error closing migration source: %v\n", srcErr)
			}
			if dbErr != nil {
				fmt.Printf("Warning: error closing migration database instance: %v\n", dbErr)
			}
		}
	}()

	// `m.Up()` applies all available "up" migrations.
	// `migrate.ErrNoChange` means the schema is already current, which is not an error.
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return apperror.NewDatabaseError("failed to run migrations", err)
	}

	return nil
}
