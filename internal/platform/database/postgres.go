package database

import (
	"context"
	"database/sql"
	"log"
	"time"

	"employee_manager/internal/platform/config"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
)

// Connect opens the connection pool and verifies it. The returned handle is
// passed down explicitly; there is no package-level connection state.
func Connect(cfg *config.Config) *sql.DB {
	db, err := sql.Open("pgx", cfg.DBConnStr)
	if err != nil {
		log.Fatalf("Error opening database: %v", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(5 * time.Minute)

	if err = db.Ping(); err != nil {
		log.Fatalf("Error connecting to database: %v", err)
	}

	log.Println("Successfully connected to PostgreSQL database")
	return db
}

// Migrate creates the employees and users tables if they do not exist.
// Email and username uniqueness is enforced here so that inserts are atomic
// and a constraint violation can be translated to a conflict error instead
// of racing a separate existence check.
func Migrate(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id              UUID PRIMARY KEY,
		first_name      VARCHAR(50)  NOT NULL,
		last_name       VARCHAR(50)  NOT NULL,
		email           TEXT         NOT NULL UNIQUE,
		position        VARCHAR(100) NOT NULL,
		salary          NUMERIC      NOT NULL CHECK (salary >= 0),
		date_of_joining DATE         NOT NULL,
		department      VARCHAR(100) NOT NULL,
		profile_picture TEXT,
		created_at      TIMESTAMPTZ  NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ  NOT NULL DEFAULT now()
	);

	CREATE TABLE IF NOT EXISTS users (
		id              UUID PRIMARY KEY,
		username        TEXT        NOT NULL UNIQUE,
		email           TEXT        NOT NULL UNIQUE,
		hashed_password TEXT        NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
	);`

	_, err := db.ExecContext(ctx, schema)
	return err
}

func Close(db *sql.DB) {
	if db != nil {
		db.Close()
		log.Println("Database connection closed.")
	}
}
