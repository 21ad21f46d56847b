package db

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"
)

// ConnectToSQLite initializes and returns a SQLite connection
func ConnectToSQLite(dbPath string) (*sql.DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for SQLite: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=10000&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	log.Println("Connected to SQLite database")
	return db, nil
}

// InitializeSchema creates all the necessary tables if they don't exist
func InitializeSchema(db *sql.DB) error {
	// Create countries table
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS countries (
		id TEXT PRIMARY KEY,
		code TEXT NOT NULL UNIQUE,
		name TEXT NOT NULL,
		flag_icon TEXT,
		timezone TEXT NOT NULL,
		currency_code TEXT NOT NULL,
		currency_symbol TEXT NOT NULL,
		is_active INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return fmt.Errorf("failed to create countries table: %w", err)
	}

	// Create country_operational_hours table
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS country_operational_hours (
		country_id TEXT PRIMARY KEY,
		timezone TEXT NOT NULL,
		operational_start TEXT NOT NULL,
		operational_end TEXT NOT NULL,
		is_operational INTEGER NOT NULL DEFAULT 1,
		weekend_operational INTEGER NOT NULL DEFAULT 0,
		holiday_operational INTEGER NOT NULL DEFAULT 1,
		FOREIGN KEY (country_id) REFERENCES countries(id)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create country_operational_hours table: %w", err)
	}

	// Create marketplace_status table
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS marketplace_status (
		country_id TEXT PRIMARY KEY,
		current_status TEXT NOT NULL,
		current_time_local TEXT NOT NULL,
		next_operational_time TIMESTAMP,
		status_message TEXT NOT NULL,
		last_updated TIMESTAMP NOT NULL,
		FOREIGN KEY (country_id) REFERENCES countries(id)
	)`)
	if err != nil {
		return fmt.Errorf("failed to create marketplace_status table: %w", err)
	}

	// Create geolocation_cache table
	_, err = db.Exec(`
	CREATE TABLE IF NOT EXISTS geolocation_cache (
		id TEXT PRIMARY KEY,
		ip_address TEXT NOT NULL UNIQUE,
		country_code TEXT NOT NULL,
		country_name TEXT,
		city TEXT,
		region TEXT,
		timezone TEXT,
		latitude REAL,
		longitude REAL,
		isp TEXT,
		cached_at TIMESTAMP NOT NULL
	)`)
	if err != nil {
		return fmt.Errorf("failed to create geolocation_cache table: %w", err)
	}

	log.Println("Database schema initialized successfully")
	return nil
}
