// Modul: store_core.go
// Beschreibung: Store-Kernfunktionen und lazy Datenbank-Initialisierung.

package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
)

// DefaultLimit ist die Anzahl Runs, die Runs ohne Limit zurueckgibt
const DefaultLimit = 20

// Store keeps processed inputs in a SQLite database. The database is opened
// on first use.
type Store struct {
	// DBPath is the database file; tests point it into a temp dir
	DBPath string

	// dbMu protects database initialization only
	dbMu sync.Mutex
	db   *database
}

func (s *Store) ensureDB() error {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	if s.db != nil {
		return nil
	}

	if s.DBPath == "" {
		return fmt.Errorf("open database: no path configured")
	}

	if err := os.MkdirAll(filepath.Dir(s.DBPath), 0o755); err != nil {
		return fmt.Errorf("create db directory: %w", err)
	}

	database, err := newDatabase(s.DBPath)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	s.db = database
	return nil
}

// SaveRun stores r. An empty ID is replaced by a new UUIDv7 and a zero
// CreatedAt by the current time; the stored run is returned.
func (s *Store) SaveRun(r Run) (Run, error) {
	if err := s.ensureDB(); err != nil {
		return Run{}, err
	}

	if r.ID == "" {
		u, err := uuid.NewV7()
		if err != nil {
			return Run{}, fmt.Errorf("generate run id: %w", err)
		}
		r.ID = u.String()
	}

	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}

	if err := s.db.saveRun(r); err != nil {
		return Run{}, err
	}

	return r, nil
}

// Runs lists up to limit runs, newest first. limit <= 0 uses DefaultLimit.
func (s *Store) Runs(limit int) ([]Summary, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}

	if limit <= 0 {
		limit = DefaultLimit
	}

	return s.db.getRuns(limit)
}

// Run loads a run by ID. Unknown IDs fail with ErrRunNotFound.
func (s *Store) Run(id string) (*Run, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}

	return s.db.getRun(id)
}

// Close closes the database if it was opened.
func (s *Store) Close() error {
	s.dbMu.Lock()
	defer s.dbMu.Unlock()

	if s.db == nil {
		return nil
	}

	err := s.db.Close()
	s.db = nil
	return err
}
