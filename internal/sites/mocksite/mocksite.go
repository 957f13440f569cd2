// A mock archive adapter for development and testing purposes. It
// serves fixture authors and stories without making network calls, and
// can be told to fail specific operations.
package mocksite

import (
	"fmt"
	"time"

	"github.com/ffmirror/ffmirror-go/internal/models"
)

const Key = "mocknet"

// AuthorFixture is the remote state for one author: who they are and
// which story ids they have authored and favorited.
type AuthorFixture struct {
	Info      models.AuthorInfo
	Authored  []string
	Favorited []string
}

// StoryFixture is the remote state for one story.
type StoryFixture struct {
	Summary  models.StorySummary
	TOC      []models.ChapterInfo
	Chapters []string // chapter bodies, parallel to TOC
}

// Adapter implements models.SiteAdapter over in-memory fixtures.
type Adapter struct {
	Authors map[string]*AuthorFixture
	Stories map[string]*StoryFixture

	// Error injection. FailList makes DownloadList fail for the given
	// author id; FailMetadata and FailChapter do the same per story.
	FailList     map[string]bool
	FailMetadata map[string]bool
	FailChapter  map[string]bool

	// ListCalls counts DownloadList invocations per author id.
	ListCalls map[string]int
}

func New() *Adapter {
	return &Adapter{
		Authors:      make(map[string]*AuthorFixture),
		Stories:      make(map[string]*StoryFixture),
		FailList:     make(map[string]bool),
		FailMetadata: make(map[string]bool),
		FailChapter:  make(map[string]bool),
		ListCalls:    make(map[string]int),
	}
}

func (a *Adapter) Info() models.SiteInfo {
	return models.SiteInfo{Key: Key, Name: "Mocknet"}
}

func (a *Adapter) UserURL(author models.AuthorInfo) string {
	return fmt.Sprintf("https://mocknet.example/u/%s/", author.ID)
}

func (a *Adapter) StoryURL(story models.StorySummary) string {
	return fmt.Sprintf("https://mocknet.example/s/%s/1/", story.ID)
}

func (a *Adapter) DownloadList(authorID string) ([]models.StorySummary, []models.StorySummary, models.AuthorInfo, error) {
	a.ListCalls[authorID]++
	if a.FailList[authorID] {
		return nil, nil, models.AuthorInfo{}, fmt.Errorf("mocknet: list download failed for author %s", authorID)
	}
	fix, ok := a.Authors[authorID]
	if !ok {
		return nil, nil, models.AuthorInfo{}, fmt.Errorf("mocknet: no such author %s", authorID)
	}
	var authored, favorited []models.StorySummary
	for _, sid := range fix.Authored {
		sm := a.Stories[sid].Summary
		sm.Author = fix.Info
		authored = append(authored, sm)
	}
	for _, sid := range fix.Favorited {
		favorited = append(favorited, a.Stories[sid].Summary)
	}
	return authored, favorited, fix.Info, nil
}

func (a *Adapter) DownloadMetadata(storyID string) (models.StorySummary, []models.ChapterInfo, error) {
	if a.FailMetadata[storyID] {
		return models.StorySummary{}, nil, fmt.Errorf("mocknet: metadata download failed for story %s", storyID)
	}
	fix, ok := a.Stories[storyID]
	if !ok {
		return models.StorySummary{}, nil, fmt.Errorf("mocknet: no such story %s", storyID)
	}
	return fix.Summary, fix.TOC, nil
}

func (a *Adapter) DownloadChapter(story models.StorySummary, num int, ch models.ChapterInfo) (string, error) {
	if a.FailChapter[story.ID] {
		return "", fmt.Errorf("mocknet: chapter download failed for story %s", story.ID)
	}
	fix, ok := a.Stories[story.ID]
	if !ok || num < 0 || num >= len(fix.Chapters) {
		return "", fmt.Errorf("mocknet: no chapter %d for story %s", num, story.ID)
	}
	return fix.Chapters[num], nil
}

func (a *Adapter) TagsFor(story models.StorySummary) []string {
	return nil
}

// AddAuthor registers a fixture author with the given id and name.
func (a *Adapter) AddAuthor(id, name string) *AuthorFixture {
	fix := &AuthorFixture{
		Info: models.AuthorInfo{Name: name, ID: id, Site: Key,
			URL: fmt.Sprintf("https://mocknet.example/u/%s/", id)},
	}
	a.Authors[id] = fix
	return fix
}

// AddStory registers a fixture story authored by the given author and
// generates the requested number of chapters with predictable content.
func (a *Adapter) AddStory(authorID, storyID, title, category string, chapters int) *StoryFixture {
	auth := a.Authors[authorID]
	updated := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	fix := &StoryFixture{
		Summary: models.StorySummary{
			Title:     title,
			Summary:   "A " + title + " story.",
			Category:  category,
			ID:        storyID,
			Chapters:  chapters,
			Words:     1000 * chapters,
			Author:    auth.Info,
			Site:      Key,
			Updated:   updated,
			Published: updated.AddDate(0, -1, 0),
		},
	}
	for i := 0; i < chapters; i++ {
		fix.TOC = append(fix.TOC, models.ChapterInfo{
			Title: fmt.Sprintf("Chapter %d", i+1),
			URL:   fmt.Sprintf("https://mocknet.example/s/%s/%d/", storyID, i+1),
		})
		fix.Chapters = append(fix.Chapters, fmt.Sprintf("<p>Content of %s chapter %d</p>", storyID, i+1))
	}
	a.Stories[storyID] = fix
	auth.Authored = append(auth.Authored, storyID)
	return fix
}

// Touch simulates a remote story update: one more chapter, more words,
// a newer updated timestamp.
func (a *Adapter) Touch(storyID string) {
	fix := a.Stories[storyID]
	n := len(fix.TOC)
	fix.TOC = append(fix.TOC, models.ChapterInfo{Title: fmt.Sprintf("Chapter %d", n+1)})
	fix.Chapters = append(fix.Chapters, fmt.Sprintf("<p>Content of %s chapter %d</p>", storyID, n+1))
	fix.Summary.Chapters = n + 1
	fix.Summary.Words += 1000
	fix.Summary.Updated = fix.Summary.Updated.Add(24 * time.Hour)
}
