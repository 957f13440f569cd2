// To handle all database interactions. This is our data access layer,
// keeping SQL queries separate from the sync, archive and scheduling
// logic in internal/mirror.

package store

import (
	"database/sql"
	"time"
)

// Store provides all functions to interact with the database.
type Store struct {
	db *sql.DB
}

// New creates a new Store instance.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Begin opens a transaction. The sync engine commits once per author;
// the archive engine's commits are caller-controlled.
func (s *Store) Begin() (*sql.Tx, error) {
	return s.db.Begin()
}

// All timestamps cross the store boundary normalized to UTC. SQLite has
// no timezone handling of its own, so anything else would silently mix
// zones inside one column.

func utc(t time.Time) time.Time {
	return t.UTC()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
