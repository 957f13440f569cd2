package ffnet

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
)

func docFrom(t *testing.T, page string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatalf("Failed to parse fixture HTML: %v", err)
	}
	return doc
}

func TestParseListingMeta(t *testing.T) {
	testCases := []struct {
		name       string
		meta       string
		genre      string
		characters string
	}{
		{
			"full line",
			"Rated: T - English - Romance/Humor - Harry P., Hermione G. - Chapters: 12 - Words: 48,231 - Reviews: 42 - Updated: 4/3 - Published: 1/1 - Status: Complete - id: 101",
			"Romance/Humor",
			"Harry P., Hermione G.",
		},
		{
			"no genre, no characters",
			"Rated: K - English - Chapters: 1 - Words: 512 - Published: 1/1 - id: 102",
			"",
			"",
		},
		{
			"genre only",
			"Rated: T - English - Adventure - Chapters: 3 - Words: 9,000 - id: 103",
			"Adventure",
			"",
		},
		{
			"crossover prefix",
			"Crossover - Rated: M - English - Drama - Naruto U. - Chapters: 7 - Words: 21,000 - id: 104",
			"Drama",
			"Naruto U.",
		},
		{
			"bracketed pairings",
			"Rated: T - English - Romance - [Harry P., Ginny W.] Ron W. - Words: 5,000 - id: 105",
			"Romance",
			"[Harry P., Ginny W.] Ron W.",
		},
		{
			"complete without status label",
			"Rated: K+ - English - Humor - Luna L. - Chapters: 2 - Words: 3,000 - Complete",
			"Humor",
			"Luna L.",
		},
	}
	for _, tc := range testCases {
		genre, characters := parseListingMeta(tc.meta)
		if genre != tc.genre {
			t.Errorf("%s: genre = %q, want %q", tc.name, genre, tc.genre)
		}
		if characters != tc.characters {
			t.Errorf("%s: characters = %q, want %q", tc.name, characters, tc.characters)
		}
	}
}

func TestExtractStoryText(t *testing.T) {
	page := `<html><body><div id='content'>
<div class='storytext xcontrast_txt nocopy' id='storytext'><p>First paragraph.</p><p>Second paragraph.</p></div>
<div id='after'>ads</div></body></html>`
	got, err := extractStoryText(page)
	if err != nil {
		t.Fatalf("extractStoryText failed: %v", err)
	}
	want := "<p>First paragraph.</p><p>Second paragraph.</p>"
	if got != want {
		t.Errorf("Extracted %q, want %q", got, want)
	}
}

func TestExtractStoryTextMissing(t *testing.T) {
	if _, err := extractStoryText("<html><body>nothing here</body></html>"); err == nil {
		t.Error("Expected error when storytext div is absent")
	}
	if _, err := extractStoryText("<div id='storytext'>never closed"); err == nil {
		t.Error("Expected error when storytext div is unterminated")
	}
}

const authoredEntry = `
<div class="z-list zhover zpointer" data-category="Harry Potter" data-storyid="101"
  data-title="It\'s Magic" data-wordcount="48231" data-datesubmit="1577836800"
  data-dateupdate="1580515200" data-ratingtimes="42" data-chapters="12" data-statusid="2">
<a class="stitle" href="/s/101/1/It-s-Magic">It's Magic</a>
<div class="z-indent z-padtop">A summary of the story.<div class="z-padtop2 xgray">Rated: T - English - Adventure - Harry P. - Chapters: 12 - Words: 48,231 - Reviews: 42 - Updated: 4/3 - Published: 1/1 - Status: Complete - id: 101</div></div>
</div>`

const favoriteEntry = `
<div class="z-list favstories" data-category="Naruto" data-storyid="900"
  data-title="Borrowed Story" data-wordcount="12000" data-datesubmit="1609459200"
  data-dateupdate="1612137600" data-ratingtimes="7" data-chapters="4" data-statusid="1">
<a class="stitle" href="/s/900/1/Borrowed-Story">Borrowed Story</a> by <a href="/u/999/other-writer">Other Writer</a>
<div class="z-indent z-padtop">Someone else's summary.<div class="z-padtop2 xgray">Rated: K - English - Humor - Naruto U. - Chapters: 4 - Words: 12,000 - id: 900</div></div>
</div>`

func TestParseEntryAuthored(t *testing.T) {
	a := New(nil)
	doc := docFrom(t, "<html><body>"+authoredEntry+"</body></html>")

	sm, fav, err := a.parseEntry(doc.Find("div.z-list").First())
	if err != nil {
		t.Fatalf("parseEntry failed: %v", err)
	}
	if fav {
		t.Error("Authored entry misread as favorite")
	}
	if sm.ID != "101" {
		t.Errorf("Expected story id '101', got %q", sm.ID)
	}
	if sm.Title != "It's Magic" {
		t.Errorf("Escaped quote not unescaped: %q", sm.Title)
	}
	if sm.Category != "Harry Potter" || sm.Words != 48231 || sm.Chapters != 12 || sm.Reviews != 42 {
		t.Errorf("Attribute fields misread: %+v", sm)
	}
	if !sm.Complete {
		t.Error("statusid=2 should mean complete")
	}
	if !sm.Published.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Published = %v", sm.Published)
	}
	if !sm.Updated.Equal(time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Updated = %v", sm.Updated)
	}
	if sm.Summary != "A summary of the story." {
		t.Errorf("Summary = %q", sm.Summary)
	}
	if sm.Genre != "Adventure" || sm.Characters != "Harry P." {
		t.Errorf("Meta line misread: genre %q, characters %q", sm.Genre, sm.Characters)
	}
	if sm.URL != "https://www.fanfiction.net/s/101/1/" {
		t.Errorf("URL = %q", sm.URL)
	}
}

func TestParseEntryFavorite(t *testing.T) {
	a := New(nil)
	doc := docFrom(t, "<html><body>"+favoriteEntry+"</body></html>")

	sm, fav, err := a.parseEntry(doc.Find("div.z-list").First())
	if err != nil {
		t.Fatalf("parseEntry failed: %v", err)
	}
	if !fav {
		t.Fatal("Favorite entry not recognized")
	}
	if sm.Author.ID != "999" || sm.Author.Name != "Other Writer" {
		t.Errorf("Byline misread: %+v", sm.Author)
	}
	if sm.Complete {
		t.Error("statusid=1 should mean incomplete")
	}
}

const storyPage = `
<html><body>
<div id="pre_story_links"><a href="/book/">Books</a><a href="/book/Harry-Potter/">Harry Potter</a></div>
<div id="profile_top">
<b class="xcontrast_txt">It's Magic</b>
<a class="xcontrast_txt" href="/u/42/some-writer">Some Writer</a>
<div class="xcontrast_txt">A summary of the story.</div>
<span class="xgray xcontrast_txt">Rated: T - English - Adventure - Harry P. - Chapters: 3 - Words: 48,231 - Reviews: 42 - Status: Complete - Updated: <span data-xutime="1580515200">2/1/2020</span> - Published: <span data-xutime="1577836800">1/1/2020</span></span>
</div>
<select id="chap_select"><option value="1">1. The Beginning</option><option value="2">2. The Middle</option><option value="3">3. The End</option></select>
</body></html>`

func TestParseStoryPage(t *testing.T) {
	a := New(nil)
	doc := docFrom(t, storyPage)

	sm, err := a.parseStoryPage(doc, "101")
	if err != nil {
		t.Fatalf("parseStoryPage failed: %v", err)
	}
	if sm.Title != "It's Magic" {
		t.Errorf("Title = %q", sm.Title)
	}
	if sm.Author.Name != "Some Writer" || sm.Author.ID != "42" {
		t.Errorf("Author = %+v", sm.Author)
	}
	if sm.Summary != "A summary of the story." {
		t.Errorf("Summary = %q", sm.Summary)
	}
	if sm.Words != 48231 {
		t.Errorf("Words = %d", sm.Words)
	}
	if sm.Genre != "Adventure" || sm.Characters != "Harry P." {
		t.Errorf("Meta misread: genre %q, characters %q", sm.Genre, sm.Characters)
	}
	if !sm.Complete {
		t.Error("Expected complete status")
	}
	if !sm.Updated.Equal(time.Date(2020, 2, 1, 0, 0, 0, 0, time.UTC)) ||
		!sm.Published.Equal(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Timestamps misread: updated %v, published %v", sm.Updated, sm.Published)
	}
	if sm.Category != "Harry Potter" {
		t.Errorf("Category = %q", sm.Category)
	}
}

func TestParseTOC(t *testing.T) {
	a := New(nil)
	doc := docFrom(t, storyPage)

	toc := a.parseTOC(doc, "101")
	if len(toc) != 3 {
		t.Fatalf("Expected 3 chapters, got %d", len(toc))
	}
	wantTitles := []string{"The Beginning", "The Middle", "The End"}
	for i, want := range wantTitles {
		if toc[i].Title != want {
			t.Errorf("Chapter %d: title %q, want %q", i, toc[i].Title, want)
		}
	}
	if toc[2].URL != "https://www.fanfiction.net/s/101/3/" {
		t.Errorf("Chapter URL = %q", toc[2].URL)
	}
}

func TestParseTOCOneshot(t *testing.T) {
	a := New(nil)
	doc := docFrom(t, `<html><body><div id="profile_top"></div></body></html>`)

	toc := a.parseTOC(doc, "55")
	if len(toc) != 1 || toc[0].Title != "Chapter 1" {
		t.Errorf("Expected synthetic single-chapter TOC, got %+v", toc)
	}
}

func TestFictionPressURLs(t *testing.T) {
	a := NewFictionPress(nil)
	if a.Info().Key != "fictionpress" {
		t.Errorf("Key = %q", a.Info().Key)
	}
	if got := a.storyURL("7", 2); got != "https://www.fictionpress.com/s/7/2/" {
		t.Errorf("storyURL = %q", got)
	}
}
