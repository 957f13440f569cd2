package store

import (
	"database/sql"
	"time"

	"github.com/ffmirror/ffmirror-go/internal/models"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, so lookups can run
// inside an author-sync transaction or standalone.
type dbtx interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

const authorCols = "id, archive, site_id, name, in_mirror, md_synced, sync_interval_secs"

func scanAuthor(row *sql.Row) (*models.Author, error) {
	var a models.Author
	var synced sql.NullTime
	var intervalSecs int64
	err := row.Scan(&a.ID, &a.Archive, &a.SiteID, &a.Name, &a.InMirror, &synced, &intervalSecs)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	a.MdSynced = timePtr(synced)
	a.SyncInterval = time.Duration(intervalSecs) * time.Second
	return &a, nil
}

func getAuthor(q dbtx, archive, siteID string) (*models.Author, error) {
	row := q.QueryRow("SELECT "+authorCols+" FROM authors WHERE archive = ? AND site_id = ?",
		archive, siteID)
	return scanAuthor(row)
}

// GetAuthor finds an author by (archive, site id). It returns nil with
// no error when the author is unknown.
func (s *Store) GetAuthor(archive, siteID string) (*models.Author, error) {
	return getAuthor(s.db, archive, siteID)
}

// GetAuthorTx is GetAuthor inside an open transaction, so that authors
// created earlier in the same sync are visible.
func (s *Store) GetAuthorTx(tx *sql.Tx, archive, siteID string) (*models.Author, error) {
	return getAuthor(tx, archive, siteID)
}

// GetAuthorByID fetches an author by its local primary key.
func (s *Store) GetAuthorByID(id int64) (*models.Author, error) {
	row := s.db.QueryRow("SELECT "+authorCols+" FROM authors WHERE id = ?", id)
	return scanAuthor(row)
}

// CreateAuthor inserts a new author row and returns its id.
func (s *Store) CreateAuthor(tx *sql.Tx, a *models.Author) (int64, error) {
	res, err := tx.Exec(`
		INSERT INTO authors (archive, site_id, name, in_mirror, md_synced, sync_interval_secs)
		VALUES (?, ?, ?, ?, ?, ?)`,
		a.Archive, a.SiteID, a.Name, a.InMirror, nullTime(a.MdSynced),
		int64(a.SyncInterval/time.Second))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	a.ID = id
	return id, nil
}

// TouchAuthorSynced stamps the author's metadata-sync time. The stamp
// is unconditional; it drives scheduling order, not change detection.
func (s *Store) TouchAuthorSynced(tx *sql.Tx, authorID int64, t time.Time) error {
	_, err := tx.Exec("UPDATE authors SET md_synced = ? WHERE id = ?", utc(t), authorID)
	return err
}

// UpdateAuthorName refreshes the display name from a fresh listing.
func (s *Store) UpdateAuthorName(tx *sql.Tx, authorID int64, name string) error {
	_, err := tx.Exec("UPDATE authors SET name = ? WHERE id = ?", name, authorID)
	return err
}

// SetInMirror flags whether the author's stories should be archived.
func (s *Store) SetInMirror(authorID int64, inMirror bool) error {
	_, err := s.db.Exec("UPDATE authors SET in_mirror = ? WHERE id = ?", inMirror, authorID)
	return err
}

// ListAuthors returns all known authors ordered by name.
func (s *Store) ListAuthors() ([]*models.Author, error) {
	rows, err := s.db.Query("SELECT " + authorCols + " FROM authors ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuthors(rows)
}

// ListInMirrorAuthorsByStaleness returns the in-mirror authors in
// update order: never-synced authors first, then oldest sync first.
// SQLite sorts NULL before any timestamp in ascending order, which is
// exactly the staleness rule.
func (s *Store) ListInMirrorAuthorsByStaleness() ([]*models.Author, error) {
	rows, err := s.db.Query("SELECT " + authorCols +
		" FROM authors WHERE in_mirror = 1 ORDER BY md_synced ASC, id ASC")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectAuthors(rows)
}

func collectAuthors(rows *sql.Rows) ([]*models.Author, error) {
	var authors []*models.Author
	for rows.Next() {
		var a models.Author
		var synced sql.NullTime
		var intervalSecs int64
		if err := rows.Scan(&a.ID, &a.Archive, &a.SiteID, &a.Name, &a.InMirror,
			&synced, &intervalSecs); err != nil {
			return nil, err
		}
		a.MdSynced = timePtr(synced)
		a.SyncInterval = time.Duration(intervalSecs) * time.Second
		authors = append(authors, &a)
	}
	return authors, rows.Err()
}

// LoadAuthorIndex materializes the author's known stories (authored
// and favorited) keyed by site-local story id. The sync engine uses it
// for O(1) "have we seen this story" checks instead of re-querying the
// store per listing entry.
func (s *Store) LoadAuthorIndex(authorID int64) (map[string]*models.Story, error) {
	rows, err := s.db.Query(`
		SELECT `+prefixedStoryCols("st")+`
		FROM stories st
		WHERE st.author_id = ?
		UNION
		SELECT `+prefixedStoryCols("st")+`
		FROM stories st
		JOIN fav_stories fs ON fs.story_id = st.id
		WHERE fs.author_id = ?`, authorID, authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	index := make(map[string]*models.Story)
	for rows.Next() {
		story, err := scanStoryRows(rows)
		if err != nil {
			return nil, err
		}
		index[story.SiteID] = story
	}
	return index, rows.Err()
}

// AddFavStory links a story into an author's favorites set. The add is
// idempotent.
func (s *Store) AddFavStory(tx *sql.Tx, authorID, storyID int64) error {
	_, err := tx.Exec("INSERT OR IGNORE INTO fav_stories (author_id, story_id) VALUES (?, ?)",
		authorID, storyID)
	return err
}

// AddFavAuthor links one author into another's favorite-authors set.
func (s *Store) AddFavAuthor(tx *sql.Tx, authorID, favAuthorID int64) error {
	_, err := tx.Exec("INSERT OR IGNORE INTO fav_authors (author_id, fav_author_id) VALUES (?, ?)",
		authorID, favAuthorID)
	return err
}

// FavStoryIDs returns the set of story ids in an author's favorites.
func (s *Store) FavStoryIDs(authorID int64) (map[int64]bool, error) {
	rows, err := s.db.Query("SELECT story_id FROM fav_stories WHERE author_id = ?", authorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}
	return ids, rows.Err()
}
