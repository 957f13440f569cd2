package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/ffmirror/ffmirror-go/internal/models"
)

const storyCols = `id, archive, site_id, title, author_id, words, chapters,
	published, updated, category, summary, characters, complete, genre,
	download_time, download_path`

func prefixedStoryCols(alias string) string {
	cols := strings.Split(storyCols, ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

type storyScanner interface {
	Scan(dest ...interface{}) error
}

func scanStory(row storyScanner) (*models.Story, error) {
	var st models.Story
	var authorID sql.NullInt64
	var published, updated, downloadTime sql.NullTime
	err := row.Scan(&st.ID, &st.Archive, &st.SiteID, &st.Title, &authorID,
		&st.Words, &st.Chapters, &published, &updated, &st.Category,
		&st.Summary, &st.Characters, &st.Complete, &st.Genre,
		&downloadTime, &st.DownloadPath)
	if err != nil {
		return nil, err
	}
	st.AuthorID = authorID.Int64
	if published.Valid {
		st.Published = published.Time.UTC()
	}
	if updated.Valid {
		st.Updated = updated.Time.UTC()
	}
	st.DownloadTime = timePtr(downloadTime)
	return &st, nil
}

func scanStoryRows(rows *sql.Rows) (*models.Story, error) {
	return scanStory(rows)
}

func getStory(q dbtx, archive, siteID string) (*models.Story, error) {
	st, err := scanStory(q.QueryRow(
		"SELECT "+storyCols+" FROM stories WHERE archive = ? AND site_id = ?",
		archive, siteID))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return st, err
}

// GetStory finds a story by (archive, site id), returning nil with no
// error when it is unknown.
func (s *Store) GetStory(archive, siteID string) (*models.Story, error) {
	return getStory(s.db, archive, siteID)
}

// GetStoryTx is GetStory inside an open transaction.
func (s *Store) GetStoryTx(tx *sql.Tx, archive, siteID string) (*models.Story, error) {
	return getStory(tx, archive, siteID)
}

// GetStoryByID fetches a story by its local primary key.
func (s *Store) GetStoryByID(id int64) (*models.Story, error) {
	st, err := scanStory(s.db.QueryRow(
		"SELECT "+storyCols+" FROM stories WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return st, err
}

// CreateStory inserts a bare story row identified by (archive, site
// id). Descriptive fields are filled by UpdateStoryMeta when change
// detection fires.
func (s *Store) CreateStory(tx *sql.Tx, archive, siteID string) (*models.Story, error) {
	res, err := tx.Exec("INSERT INTO stories (archive, site_id) VALUES (?, ?)", archive, siteID)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &models.Story{ID: id, Archive: archive, SiteID: siteID}, nil
}

// UpdateStoryMeta overwrites a story's descriptive fields from a fresh
// summary and reassigns its author.
func (s *Store) UpdateStoryMeta(tx *sql.Tx, storyID int64, sm models.StorySummary, authorID int64) error {
	if sm.Updated.IsZero() || sm.Published.IsZero() {
		return fmt.Errorf("story %s/%s: refusing to store zero timestamps", sm.Site, sm.ID)
	}
	_, err := tx.Exec(`
		UPDATE stories SET
			title = ?, author_id = ?, words = ?, chapters = ?, published = ?,
			updated = ?, category = ?, summary = ?, characters = ?,
			complete = ?, genre = ?
		WHERE id = ?`,
		sm.Title, authorID, sm.Words, sm.Chapters, utc(sm.Published),
		utc(sm.Updated), sm.Category, sm.Summary, sm.Characters,
		sm.Complete, sm.Genre, storyID)
	return err
}

// SetStoryDownloaded records a completed archive pass: where the
// chapter files live and when they were written.
func (s *Store) SetStoryDownloaded(tx *sql.Tx, storyID int64, path string, t time.Time) error {
	_, err := tx.Exec("UPDATE stories SET download_path = ?, download_time = ? WHERE id = ?",
		path, utc(t), storyID)
	return err
}

// ListStoriesByAuthor returns an author's authored stories.
func (s *Store) ListStoriesByAuthor(authorID int64) ([]*models.Story, error) {
	rows, err := s.db.Query(
		"SELECT "+storyCols+" FROM stories WHERE author_id = ? ORDER BY updated DESC", authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStories(rows)
}

// ListStoriesNeedingArchive returns an author's stories whose on-disk
// content is missing or older than their remote update timestamp.
func (s *Store) ListStoriesNeedingArchive(authorID int64) ([]*models.Story, error) {
	rows, err := s.db.Query(`
		SELECT `+storyCols+` FROM stories
		WHERE author_id = ? AND (download_time IS NULL OR download_time < updated)
		ORDER BY id ASC`, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectStories(rows)
}

func collectStories(rows *sql.Rows) ([]*models.Story, error) {
	var stories []*models.Story
	for rows.Next() {
		st, err := scanStoryRows(rows)
		if err != nil {
			return nil, err
		}
		stories = append(stories, st)
	}
	return stories, rows.Err()
}
