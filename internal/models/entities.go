// This file defines the core data structures (models) for our application.
// These structs map to the rows of the mirror database: authors, stories,
// chapters and tags.

package models

import "time"

// Author represents one author on a remote archive. The pair
// (Archive, SiteID) identifies the author; the numeric ID is local.
type Author struct {
	ID       int64  `json:"id"`
	Archive  string `json:"archive"`
	SiteID   string `json:"site_id"`
	Name     string `json:"name"`
	InMirror bool   `json:"in_mirror"`

	// MdSynced is nil for authors that have never been synced. It is
	// stamped on every sync, whether or not anything changed, and
	// drives the update scheduling order.
	MdSynced     *time.Time    `json:"md_synced,omitempty"`
	SyncInterval time.Duration `json:"sync_interval"`

	// URL is the author's canonical profile URL. Not stored; derived
	// from the site adapter when the author is served over the API.
	URL string `json:"url,omitempty"`

	Stories    []*Story `json:"stories,omitempty"` // omitempty hides it when not loaded
	FavStories []*Story `json:"fav_stories,omitempty"`
}

// Story represents one story on a remote archive, identified by
// (Archive, SiteID). DownloadTime is nil until the story's content has
// been archived to disk at least once.
type Story struct {
	ID         int64     `json:"id"`
	Archive    string    `json:"archive"`
	SiteID     string    `json:"site_id"`
	Title      string    `json:"title"`
	AuthorID   int64     `json:"author_id"`
	Words      int       `json:"words"`
	Chapters   int       `json:"chapters"`
	Published  time.Time `json:"published"`
	Updated    time.Time `json:"updated"`
	Category   string    `json:"category"`
	Summary    string    `json:"summary"`
	Characters string    `json:"characters"`
	Complete   bool      `json:"complete"`
	Genre      string    `json:"genre"`

	DownloadTime *time.Time `json:"download_time,omitempty"`
	DownloadPath string     `json:"download_path,omitempty"`

	// URL is the story's canonical source URL, derived from the site
	// adapter when the story is served over the API.
	URL string `json:"url,omitempty"`

	Tags        []*Tag     `json:"tags,omitempty"`
	AllChapters []*Chapter `json:"all_chapters,omitempty"`
}

// NeedsArchive reports whether the story's on-disk content is missing
// or older than its remote update timestamp.
func (s *Story) NeedsArchive() bool {
	return s.DownloadTime == nil || s.DownloadTime.Before(s.Updated)
}

// Chapter is one chapter row of a story, ordered by Num within the
// story. Num is zero-based and matches the content file index.
type Chapter struct {
	ID      int64  `json:"id"`
	StoryID int64  `json:"story_id"`
	Num     int    `json:"num"`
	Title   string `json:"title"`
}

// Tag is a name-unique label attached to stories. Tags are derived
// from category strings at sync time and are only ever added.
type Tag struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`

	StoryCount int `json:"story_count,omitempty"`
}

// ConfigEntry is one row of the mirror-level key-value config table.
type ConfigEntry struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// DownloadStatus is an audit row recorded when a story is archived.
type DownloadStatus struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	AuthorID  int64     `json:"author_id"`
	StoryID   int64     `json:"story_id"`
	Value     string    `json:"value"`
}
