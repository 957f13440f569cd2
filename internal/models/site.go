package models

import "time"

// SiteInfo contains static information about a site adapter.
type SiteInfo struct {
	Key  string `json:"key"` // short archive key, e.g. "ffnet"
	Name string `json:"name"`
}

// AuthorInfo is the author metadata carried by a story listing. For
// authored entries the adapter fills it from the profile page; for
// favorite entries it comes from the per-story byline.
type AuthorInfo struct {
	Name string `json:"name"`
	ID   string `json:"id"`
	URL  string `json:"url"`
	Site string `json:"site"`
}

// StorySummary is the metadata for one story as reported by a site
// adapter, either from an author's listing page or from the story page
// itself. Timestamps are always timezone-aware UTC.
type StorySummary struct {
	Title      string     `json:"title"`
	Summary    string     `json:"summary"`
	Category   string     `json:"category"`
	ID         string     `json:"id"`
	Reviews    int        `json:"reviews"`
	Chapters   int        `json:"chapters"`
	Words      int        `json:"words"`
	Characters string     `json:"characters"`
	Author     AuthorInfo `json:"author"`
	Genre      string     `json:"genre"`
	Site       string     `json:"site"`
	Updated    time.Time  `json:"updated"`
	Published  time.Time  `json:"published"`
	Complete   bool       `json:"complete"`
	URL        string     `json:"url"`
}

// ChapterInfo is one table-of-contents entry for a story.
type ChapterInfo struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SiteAdapter defines the contract that every archive connector must
// implement. Adapters own all site-specific scraping; the mirror core
// only distinguishes "call succeeded" from "call returned an error".
type SiteAdapter interface {
	Info() SiteInfo
	// UserURL and StoryURL are pure functions of stored metadata.
	UserURL(author AuthorInfo) string
	StoryURL(story StorySummary) string
	// DownloadList fetches an author's profile page and returns the
	// stories they have authored, the stories they have favorited, and
	// the author's own info.
	DownloadList(authorID string) (authored, favorited []StorySummary, info AuthorInfo, err error)
	// DownloadMetadata fetches a story page and returns fresh metadata
	// plus the ordered table of contents.
	DownloadMetadata(storyID string) (StorySummary, []ChapterInfo, error)
	// DownloadChapter fetches the content of a single chapter.
	DownloadChapter(story StorySummary, num int, ch ChapterInfo) (string, error)
	// TagsFor derives the tag set for a story from its metadata.
	TagsFor(story StorySummary) []string
}
