package database

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/pantrybase/recipe-api/config"
)

// waitInterval is the fixed delay between readiness probes.
const waitInterval = time.Second

// WaitForDatabase blocks until the database accepts connections or the
// context is cancelled. Startup ordering under docker compose is the only
// reason this exists; once the server is up, connection errors surface
// through normal request handling.
func WaitForDatabase(ctx context.Context, cfg *config.Config) error {
	log.Printf("Waiting for database at %s:%s...", cfg.DBHost, cfg.DBPort)

	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return fmt.Errorf("error opening database: %v", err)
	}
	defer db.Close()

	for {
		if err := db.PingContext(ctx); err == nil {
			log.Printf("Database available")
			return nil
		}
		log.Printf("Database unavailable, waiting %s...", waitInterval)
		select {
		case <-ctx.Done():
			return fmt.Errorf("gave up waiting for database: %w", ctx.Err())
		case <-time.After(waitInterval):
		}
	}
}

// Connect opens the gorm connection used by the services.
func Connect(cfg *config.Config) (*gorm.DB, error) {
	log.Printf("Connecting to database at %s:%s as user %s", cfg.DBHost, cfg.DBPort, cfg.DBUser)

	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("error connecting to the database: %v", err)
	}

	log.Printf("Successfully connected to database")
	return db, nil
}

// HealthCheck checks if the database is accessible
func HealthCheck(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
