package storage

import (
	"database/sql"
	"fmt"
	"strings"

	_ "github.com/mattn/go-sqlite3"
)

// Storage keeps the history of runs and the emails they found
type Storage struct {
	db *sql.DB
}

// NewStorage creates a new Storage instance, opening/creating the DB and initializing schema
func NewStorage(dbPath string) (*Storage, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	storage := &Storage{db: db}

	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

// initSchema creates tables and indices if they don't exist
func (s *Storage) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		run_id INTEGER PRIMARY KEY AUTOINCREMENT,
		mode TEXT NOT NULL,
		seeds TEXT NOT NULL,
		started_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		finished_at TIMESTAMP,
		pages_visited INTEGER DEFAULT 0,
		pages_failed INTEGER DEFAULT 0,
		emails_found INTEGER DEFAULT 0,
		termination_reason TEXT
	);

	CREATE TABLE IF NOT EXISTS emails (
		email_id INTEGER PRIMARY KEY AUTOINCREMENT,
		address TEXT UNIQUE NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS locations (
		location_id INTEGER PRIMARY KEY AUTOINCREMENT,
		email_id INTEGER NOT NULL,
		path TEXT NOT NULL,
		first_run_id INTEGER NOT NULL,
		last_run_id INTEGER NOT NULL,
		hits INTEGER DEFAULT 1,
		FOREIGN KEY (email_id) REFERENCES emails(email_id),
		FOREIGN KEY (first_run_id) REFERENCES runs(run_id),
		FOREIGN KEY (last_run_id) REFERENCES runs(run_id),
		UNIQUE(email_id, path)
	);

	CREATE INDEX IF NOT EXISTS idx_emails_address ON emails(address);
	CREATE INDEX IF NOT EXISTS idx_locations_email ON locations(email_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// StartRun records a new run and returns its id
func (s *Storage) StartRun(mode string, seeds []string) (int64, error) {
	res, err := s.db.Exec("INSERT INTO runs (mode, seeds) VALUES (?, ?)", mode, strings.Join(seeds, " "))
	if err != nil {
		return 0, fmt.Errorf("failed to start run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to retrieve run_id: %w", err)
	}
	return runID, nil
}

// FinishRun stores the final counters of a run
func (s *Storage) FinishRun(runID int64, m Metrics) error {
	_, err := s.db.Exec(`
		UPDATE runs SET
			finished_at = CURRENT_TIMESTAMP,
			pages_visited = ?,
			pages_failed = ?,
			emails_found = ?,
			termination_reason = ?
		WHERE run_id = ?
	`, m.PagesVisited, m.PagesFailed, m.EmailsFound, m.TerminationReason, runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by id, returns nil if not found
func (s *Storage) GetRun(runID int64) (*Run, error) {
	var run Run
	var reason sql.NullString
	err := s.db.QueryRow(`
		SELECT run_id, mode, seeds, started_at, pages_visited, pages_failed, emails_found, termination_reason
		FROM runs
		WHERE run_id = ?
	`, runID).Scan(&run.RunID, &run.Mode, &run.Seeds, &run.StartedAt,
		&run.PagesVisited, &run.PagesFailed, &run.EmailsFound, &reason)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.TerminationReason = reason.String
	return &run, nil
}

// UpsertEmail inserts an address if new and returns its email_id
func (s *Storage) UpsertEmail(address string) (int64, error) {
	_, err := s.db.Exec(`
		INSERT INTO emails (address) VALUES (?)
		ON CONFLICT(address) DO NOTHING
	`, address)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert email: %w", err)
	}

	email, err := s.GetEmail(address)
	if err != nil {
		return 0, err
	}
	if email == nil {
		return 0, fmt.Errorf("failed to retrieve email_id for %s", address)
	}
	return email.EmailID, nil
}

// UpsertLocation records a path for an email or bumps its hit count
func (s *Storage) UpsertLocation(emailID int64, path string, runID int64) error {
	_, err := s.db.Exec(`
		INSERT INTO locations (email_id, path, first_run_id, last_run_id, hits)
		VALUES (?, ?, ?, ?, 1)
		ON CONFLICT(email_id, path) DO UPDATE SET
			last_run_id = EXCLUDED.last_run_id,
			hits = hits + 1
	`, emailID, path, runID, runID)

	if err != nil {
		return fmt.Errorf("failed to upsert location: %w", err)
	}
	return nil
}

// GetEmail retrieves an email by address, returns nil if not found
func (s *Storage) GetEmail(address string) (*Email, error) {
	var email Email
	err := s.db.QueryRow(`
		SELECT email_id, address, created_at
		FROM emails
		WHERE address = ?
	`, address).Scan(&email.EmailID, &email.Address, &email.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get email: %w", err)
	}

	return &email, nil
}

// ListLocations returns every recorded location ordered by address and insertion
func (s *Storage) ListLocations() ([]*Location, error) {
	rows, err := s.db.Query(`
		SELECT l.location_id, e.address, l.path, l.first_run_id, l.last_run_id, l.hits
		FROM locations l
		JOIN emails e ON e.email_id = l.email_id
		ORDER BY e.address ASC, l.location_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list locations: %w", err)
	}
	defer rows.Close()

	var locations []*Location
	for rows.Next() {
		var loc Location
		if err := rows.Scan(&loc.LocationID, &loc.Address, &loc.Path, &loc.FirstRunID, &loc.LastRunID, &loc.Hits); err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, &loc)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating locations: %w", err)
	}

	return locations, nil
}

// Close closes the database connection
func (s *Storage) Close() error {
	return s.db.Close()
}
