package store

import (
	"database/sql"

	"github.com/ffmirror/ffmirror-go/internal/models"
)

// GetChapters returns a story's chapter rows ordered by sequence
// number.
func (s *Store) GetChapters(storyID int64) ([]*models.Chapter, error) {
	rows, err := s.db.Query(
		"SELECT id, story_id, num, title FROM chapters WHERE story_id = ? ORDER BY num ASC",
		storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var chapters []*models.Chapter
	for rows.Next() {
		var c models.Chapter
		if err := rows.Scan(&c.ID, &c.StoryID, &c.Num, &c.Title); err != nil {
			return nil, err
		}
		chapters = append(chapters, &c)
	}
	return chapters, rows.Err()
}

// UpsertChapter updates the title of the chapter at a position, or
// inserts the row if the position is new. Positions beyond a shrinking
// table of contents are left alone; stale trailing rows are retained.
func (s *Store) UpsertChapter(tx *sql.Tx, storyID int64, num int, title string) error {
	_, err := tx.Exec(`
		INSERT INTO chapters (story_id, num, title) VALUES (?, ?, ?)
		ON CONFLICT(story_id, num) DO UPDATE SET title = excluded.title`,
		storyID, num, title)
	return err
}

// CountChapters returns the number of chapter rows for a story.
func (s *Store) CountChapters(storyID int64) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM chapters WHERE story_id = ?", storyID).Scan(&n)
	return n, err
}
