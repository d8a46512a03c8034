package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
)

// DB holds the database connection
var DB *sql.DB

// ErrNotConfigured is returned by InitDB when no connection variables are set
var ErrNotConfigured = errors.New("database connection variables not set. Set DATABASE_URL or DB_HOST, DB_USER, DB_NAME")

// schema creates the tables the service writes to
const schema = `
CREATE TABLE IF NOT EXISTS writeoff_runs (
	id              UUID PRIMARY KEY,
	product_type    TEXT        NOT NULL,
	period_start    TIMESTAMPTZ NOT NULL,
	period_end      TIMESTAMPTZ NOT NULL,
	status          TEXT        NOT NULL,
	reason          TEXT,
	goods_total     INTEGER     NOT NULL DEFAULT 0,
	unmatched_total INTEGER     NOT NULL DEFAULT 0,
	file_name       TEXT,
	drive_file_id   TEXT,
	chat_id         BIGINT,
	created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS writeoff_runs_created_at_idx ON writeoff_runs (created_at DESC);
`

// connectionString builds the connection string from environment variables
func connectionString() (string, error) {
	connStr := os.Getenv("DATABASE_URL")
	if connStr != "" {
		return connStr, nil
	}

	// Build connection string from individual variables
	host := os.Getenv("DB_HOST")
	port := os.Getenv("DB_PORT")
	user := os.Getenv("DB_USER")
	password := os.Getenv("DB_PASSWORD")
	dbname := os.Getenv("DB_NAME")
	sslmode := os.Getenv("DB_SSLMODE")

	if host == "" || user == "" || dbname == "" {
		return "", ErrNotConfigured
	}

	if port == "" {
		port = "5432"
	}
	if sslmode == "" {
		sslmode = "disable"
	}

	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode), nil
}

// InitDB initializes the database connection from environment variables
// and creates the schema when missing
func InitDB(ctx context.Context) error {
	connStr, err := connectionString()
	if err != nil {
		return err
	}

	DB, err = sql.Open("pgx", connStr)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	// Test the connection
	if err := DB.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	log.Printf("✓ Database connection established successfully")
	return nil
}

// CloseDB closes the database connection
func CloseDB() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
