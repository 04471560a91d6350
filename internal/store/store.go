// Package store persists profiles, checkins, and conversation history in
// SQLite. One table per checkin category keyed by (user_id, timestamp);
// payloads are structured key-value columns, no bespoke formats.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"github.com/FelixWang119/WeightManagementAgent-sub000/internal/logging"
)

// Sentinel errors surfaced to the orchestrator.
var (
	// ErrProfileNotFound means no profile row exists for the user.
	ErrProfileNotFound = errors.New("profile not found")
)

// Store wraps the SQLite database. It is safe for concurrent use.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// Open initializes the SQLite database at the given path.
func Open(path string) (*Store, error) {
	timer := logging.StartTimer(logging.CategoryStore, "store.Open")
	defer timer.Stop()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.StoreDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.StoreDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logging.Store("Store initialized at %s", path)
	return s, nil
}

// initialize creates the required tables.
func (s *Store) initialize() error {
	schema := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			name TEXT,
			age INTEGER,
			gender TEXT,
			height_cm REAL,
			target_weight_kg REAL,
			activity_level TEXT,
			goal TEXT,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,

		`CREATE TABLE IF NOT EXISTS weight_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			ts DATETIME NOT NULL,
			weight_kg REAL NOT NULL,
			source TEXT DEFAULT 'chat'
		);
		CREATE INDEX IF NOT EXISTS idx_weight_user_ts ON weight_logs(user_id, ts);`,

		`CREATE TABLE IF NOT EXISTS meal_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			ts DATETIME NOT NULL,
			description TEXT NOT NULL,
			meal_type TEXT,
			calories REAL,
			source TEXT DEFAULT 'chat'
		);
		CREATE INDEX IF NOT EXISTS idx_meal_user_ts ON meal_logs(user_id, ts);`,

		`CREATE TABLE IF NOT EXISTS exercise_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			ts DATETIME NOT NULL,
			activity TEXT NOT NULL,
			duration_min REAL NOT NULL,
			calories_burned REAL,
			source TEXT DEFAULT 'chat'
		);
		CREATE INDEX IF NOT EXISTS idx_exercise_user_ts ON exercise_logs(user_id, ts);`,

		`CREATE TABLE IF NOT EXISTS water_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			ts DATETIME NOT NULL,
			amount_ml REAL NOT NULL,
			source TEXT DEFAULT 'chat'
		);
		CREATE INDEX IF NOT EXISTS idx_water_user_ts ON water_logs(user_id, ts);`,

		`CREATE TABLE IF NOT EXISTS sleep_logs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			ts DATETIME NOT NULL,
			hours REAL NOT NULL,
			quality TEXT,
			source TEXT DEFAULT 'chat'
		);
		CREATE INDEX IF NOT EXISTS idx_sleep_user_ts ON sleep_logs(user_id, ts);`,

		`CREATE TABLE IF NOT EXISTS conversation_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT NOT NULL,
			ts DATETIME NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_history_user_ts ON conversation_history(user_id, ts);`,
	}

	for _, stmt := range schema {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("failed to create schema: %w", err)
		}
	}
	return nil
}

// Ping verifies the database connection.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}
