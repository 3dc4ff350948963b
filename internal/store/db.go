// Package store persists dealership records in SQLite. Nested documents
// (deal structure, appraisal, stipulations, lease calculations, license scan
// data, credit qualification, bank programs, subtasks) are stored as JSON TEXT
// columns; everything queried or filtered on gets its own column.
package store

import (
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicate is returned when a uniqueness rule is violated (VIN, customer
// license number or email).
var ErrDuplicate = errors.New("duplicate record")

// Open opens the SQLite database at path with foreign keys enabled. The
// connection pool is capped at one connection; SQLite serialises writers
// anyway and a single connection avoids SQLITE_BUSY under concurrent load.
func Open(path string) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return db, nil
}
