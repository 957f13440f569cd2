package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ffmirror/ffmirror-go/internal/models"
)

// GetOrCreateTag looks a tag up by name, creating it if missing. Tag
// creation is idempotent; names are stored trimmed and lowercased.
func (s *Store) GetOrCreateTag(tx *sql.Tx, name string) (*models.Tag, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return nil, fmt.Errorf("tag name cannot be empty")
	}

	var tag models.Tag
	err := tx.QueryRow("SELECT id, name, created_at FROM tags WHERE name = ?", name).
		Scan(&tag.ID, &tag.Name, &tag.CreatedAt)
	if err == sql.ErrNoRows {
		res, err := tx.Exec("INSERT INTO tags (name, created_at) VALUES (?, ?)",
			name, utc(time.Now()))
		if err != nil {
			return nil, err
		}
		tag.ID, err = res.LastInsertId()
		if err != nil {
			return nil, err
		}
		tag.Name = name
		tag.CreatedAt = time.Now().UTC()
	} else if err != nil {
		return nil, err
	}
	tag.CreatedAt = tag.CreatedAt.UTC()
	return &tag, nil
}

// AttachTag associates a tag with a story. The association is
// idempotent; tags are never removed by sync, only added.
func (s *Store) AttachTag(tx *sql.Tx, storyID, tagID int64) error {
	_, err := tx.Exec("INSERT OR IGNORE INTO story_tags (story_id, tag_id) VALUES (?, ?)",
		storyID, tagID)
	return err
}

// TagsForStory returns a story's tags ordered by name.
func (s *Store) TagsForStory(storyID int64) ([]*models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.created_at
		FROM tags t
		JOIN story_tags st ON st.tag_id = t.id
		WHERE st.story_id = ?
		ORDER BY t.name ASC`, storyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTags(rows)
}

// ListTagsWithCounts returns all tags along with the count of stories
// they are attached to.
func (s *Store) ListTagsWithCounts() ([]*models.Tag, error) {
	rows, err := s.db.Query(`
		SELECT t.id, t.name, t.created_at, COUNT(st.story_id) AS story_count
		FROM tags t
		LEFT JOIN story_tags st ON t.id = st.tag_id
		GROUP BY t.id
		ORDER BY t.name ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tags []*models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt, &tag.StoryCount); err != nil {
			return nil, err
		}
		tag.CreatedAt = tag.CreatedAt.UTC()
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}

func collectTags(rows *sql.Rows) ([]*models.Tag, error) {
	var tags []*models.Tag
	for rows.Next() {
		var tag models.Tag
		if err := rows.Scan(&tag.ID, &tag.Name, &tag.CreatedAt); err != nil {
			return nil, err
		}
		tag.CreatedAt = tag.CreatedAt.UTC()
		tags = append(tags, &tag)
	}
	return tags, rows.Err()
}
