package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/blackwell-systems/basketmine/internal/export"
)

var (
	// ErrNotInitialized is returned when the run history tables do not exist yet.
	ErrNotInitialized = errors.New("run history not initialized (run 'basketmine mine' first)")
	// ErrRunNotFound is returned when no run matches an id.
	ErrRunNotFound = errors.New("run not found")
	// ErrAmbiguousRunID is returned when an id prefix matches several runs.
	ErrAmbiguousRunID = errors.New("ambiguous run id")
)

// Store persists mining runs, their itemsets and their rules in SQLite.
type Store struct {
	db *sql.DB
}

// New creates a new Store with the specified database path.
// Use ":memory:" for in-memory databases (useful for testing).
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only allows one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	return &Store{db: db}, nil
}

// Open creates a Store and makes sure the schema exists.
func Open(dbPath string) (*Store, error) {
	s, err := New(dbPath)
	if err != nil {
		return nil, err
	}
	if err := s.CreateSchema(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// DB returns the underlying database connection for advanced queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// CreateSchema creates all tables and indexes and upgrades an itemsets table
// written before item_list existed.
func (s *Store) CreateSchema() error {
	_, err := s.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return s.migrateItemsets()
}

func (s *Store) migrateItemsets() error {
	rows, err := s.db.Query(`PRAGMA table_info(itemsets)`)
	if err != nil {
		return fmt.Errorf("failed to inspect itemsets table: %w", err)
	}
	hasList := false
	for rows.Next() {
		var (
			cid     int
			name    string
			colType string
			notNull int
			dflt    sql.NullString
			pk      int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan itemsets column: %w", err)
		}
		if name == "item_list" {
			hasList = true
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("failed to inspect itemsets table: %w", err)
	}
	if hasList {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`ALTER TABLE itemsets RENAME TO itemsets_old`); err != nil {
		return fmt.Errorf("failed to migrate itemsets: %w", err)
	}
	if _, err := tx.Exec(itemsetsTable); err != nil {
		return fmt.Errorf("failed to migrate itemsets: %w", err)
	}

	old, err := tx.Query(`SELECT run_id, items, size, count, support FROM itemsets_old`)
	if err != nil {
		return fmt.Errorf("failed to migrate itemsets: %w", err)
	}
	type legacyRow struct {
		runID string
		row   export.ItemsetRow
	}
	var legacy []legacyRow
	for old.Next() {
		var r legacyRow
		if err := old.Scan(&r.runID, &r.row.Itemset, &r.row.Size, &r.row.Count, &r.row.Support); err != nil {
			old.Close()
			return fmt.Errorf("failed to migrate itemsets: %w", err)
		}
		legacy = append(legacy, r)
	}
	old.Close()
	if err := old.Err(); err != nil {
		return fmt.Errorf("failed to migrate itemsets: %w", err)
	}

	for _, r := range legacy {
		_, err := tx.Exec(`INSERT INTO itemsets (run_id, items, item_list, size, count, support) VALUES (?, ?, ?, ?, ?, ?)`,
			r.runID, r.row.Itemset, r.row.Key(), r.row.Size, r.row.Count, r.row.Support)
		if err != nil {
			return fmt.Errorf("failed to migrate itemset %s: %w", r.row.Itemset, err)
		}
	}
	if _, err := tx.Exec(`DROP TABLE itemsets_old`); err != nil {
		return fmt.Errorf("failed to migrate itemsets: %w", err)
	}
	return tx.Commit()
}

// wrap annotates err with op and maps a missing table to ErrNotInitialized.
func wrap(op string, err error) error {
	if strings.Contains(err.Error(), "no such table") {
		return fmt.Errorf("failed to %s: %w", op, ErrNotInitialized)
	}
	return fmt.Errorf("failed to %s: %w", op, err)
}
