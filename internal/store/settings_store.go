package store

import (
	"database/sql"
	"time"

	"github.com/ffmirror/ffmirror-go/internal/models"
)

// GetConfig returns the value for a mirror-level config key, or an
// empty string when the key is unset.
func (s *Store) GetConfig(name string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM config WHERE name = ?", name).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}

// SetConfig stores a mirror-level config key, overwriting any previous
// value.
func (s *Store) SetConfig(name, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO config (name, value) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET value = excluded.value`, name, value)
	return err
}

// EnsureArchiveDir seeds the archive_dir config key on first run and
// leaves an existing value untouched.
func (s *Store) EnsureArchiveDir(path string) error {
	_, err := s.db.Exec("INSERT OR IGNORE INTO config (name, value) VALUES ('archive_dir', ?)", path)
	return err
}

// RecordDownloadStatus appends an audit row for a story archive pass.
func (s *Store) RecordDownloadStatus(tx *sql.Tx, authorID, storyID int64, value string) error {
	_, err := tx.Exec(`
		INSERT INTO download_status (timestamp, author_id, story_id, value)
		VALUES (?, ?, ?, ?)`, utc(time.Now()), authorID, storyID, value)
	return err
}

// ListDownloadStatus returns the most recent audit rows, newest first.
func (s *Store) ListDownloadStatus(limit int) ([]*models.DownloadStatus, error) {
	rows, err := s.db.Query(`
		SELECT id, timestamp, author_id, story_id, value
		FROM download_status ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var statuses []*models.DownloadStatus
	for rows.Next() {
		var ds models.DownloadStatus
		var authorID, storyID sql.NullInt64
		if err := rows.Scan(&ds.ID, &ds.Timestamp, &authorID, &storyID, &ds.Value); err != nil {
			return nil, err
		}
		ds.Timestamp = ds.Timestamp.UTC()
		ds.AuthorID = authorID.Int64
		ds.StoryID = storyID.Int64
		statuses = append(statuses, &ds)
	}
	return statuses, rows.Err()
}
