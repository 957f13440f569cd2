// This is the site adapter for FF.net, and the model for other site
// adapters. It handles only FF.net-specific scraping; the generic sync
// and archive logic lives in internal/mirror. Also handles
// FictionPress, since the two sites are identical.
package ffnet

import (
	"bytes"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"github.com/ffmirror/ffmirror-go/internal/fetch"
	"github.com/ffmirror/ffmirror-go/internal/models"
	"github.com/ffmirror/ffmirror-go/internal/util"
)

type Adapter struct {
	client   *fetch.Client
	key      string
	name     string
	hostname string
}

// New returns the fanfiction.net adapter.
func New(client *fetch.Client) *Adapter {
	return &Adapter{client: client, key: "ffnet", name: "FanFiction.net",
		hostname: "www.fanfiction.net"}
}

// NewFictionPress returns the fictionpress.com adapter. The site is a
// clone of FF.net, so everything except the hostname is shared.
func NewFictionPress(client *fetch.Client) *Adapter {
	return &Adapter{client: client, key: "fictionpress", name: "FictionPress",
		hostname: "www.fictionpress.com"}
}

func (a *Adapter) Info() models.SiteInfo {
	return models.SiteInfo{Key: a.key, Name: a.name}
}

func (a *Adapter) UserURL(author models.AuthorInfo) string {
	return fmt.Sprintf("https://%s/u/%s/", a.hostname, author.ID)
}

func (a *Adapter) StoryURL(story models.StorySummary) string {
	return a.storyURL(story.ID, 1)
}

func (a *Adapter) storyURL(sid string, chapter int) string {
	return fmt.Sprintf("https://%s/s/%s/%d/", a.hostname, sid, chapter)
}

func (a *Adapter) TagsFor(story models.StorySummary) []string {
	return util.CategoryTags(story.Category)
}

var userHrefRe = regexp.MustCompile(`^/u/(\d+)/`)

// DownloadList fetches an author's profile page and returns the
// stories they have written and favorited. Favorite entries carry the
// favorited author's byline; authored entries are stamped with the
// profile owner's info.
func (a *Adapter) DownloadList(authorID string) ([]models.StorySummary, []models.StorySummary, models.AuthorInfo, error) {
	userURL := a.UserURL(models.AuthorInfo{ID: authorID})
	data, err := a.client.Get(userURL)
	if err != nil {
		return nil, nil, models.AuthorInfo{}, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil, nil, models.AuthorInfo{}, err
	}

	name := strings.TrimSpace(doc.Find("#content_wrapper_inner span").First().Text())
	if name == "" {
		return nil, nil, models.AuthorInfo{}, fmt.Errorf("ffnet: no author name on profile %s", authorID)
	}
	info := models.AuthorInfo{Name: name, ID: authorID, URL: userURL, Site: a.key}

	var authored, favorited []models.StorySummary
	var parseErr error
	doc.Find("div.z-list").EachWithBreak(func(i int, sel *goquery.Selection) bool {
		sm, fav, err := a.parseEntry(sel)
		if err != nil {
			parseErr = fmt.Errorf("ffnet: bad listing entry on profile %s: %w", authorID, err)
			return false
		}
		if fav {
			favorited = append(favorited, sm)
		} else {
			sm.Author = info
			authored = append(authored, sm)
		}
		return true
	})
	if parseErr != nil {
		return nil, nil, models.AuthorInfo{}, parseErr
	}
	return authored, favorited, info, nil
}

// parseEntry extracts a story summary from one .z-list listing row.
// The interesting fields are carried as data attributes; the summary
// text and byline live in the nested divs.
func (a *Adapter) parseEntry(sel *goquery.Selection) (models.StorySummary, bool, error) {
	sid, ok := sel.Attr("data-storyid")
	if !ok {
		return models.StorySummary{}, false, fmt.Errorf("entry has no data-storyid")
	}
	title := strings.ReplaceAll(sel.AttrOr("data-title", ""), `\'`, "'")
	category := strings.ReplaceAll(sel.AttrOr("data-category", ""), `\'`, "'")
	published := attrUnix(sel, "data-datesubmit")
	updated := attrUnix(sel, "data-dateupdate")
	reviews := attrInt(sel, "data-ratingtimes")
	chapters := attrInt(sel, "data-chapters")
	words := attrInt(sel, "data-wordcount")
	complete := sel.AttrOr("data-statusid", "") == "2"

	summaryDiv := sel.ChildrenFiltered("div").First()
	summary := strings.TrimSpace(ownText(summaryDiv))
	metaDiv := summaryDiv.ChildrenFiltered("div").First()
	genre, characters := parseListingMeta(metaDiv.Text())

	sm := models.StorySummary{
		Title:      title,
		Summary:    summary,
		Category:   category,
		ID:         sid,
		Reviews:    reviews,
		Chapters:   chapters,
		Words:      words,
		Characters: characters,
		Genre:      genre,
		Site:       a.key,
		Updated:    updated,
		Published:  published,
		Complete:   complete,
		URL:        a.storyURL(sid, 1),
	}

	isFav := sel.HasClass("favstories")
	if isFav {
		// The byline link identifies the favorited story's own author.
		sel.Find("a").EachWithBreak(func(i int, link *goquery.Selection) bool {
			href, _ := link.Attr("href")
			m := userHrefRe.FindStringSubmatch(href)
			if m == nil {
				return true
			}
			sm.Author = models.AuthorInfo{
				Name: strings.TrimSpace(link.Text()),
				ID:   m[1],
				URL:  fmt.Sprintf("https://%s/u/%s/", a.hostname, m[1]),
				Site: a.key,
			}
			return false
		})
		if sm.Author.ID == "" {
			return models.StorySummary{}, true, fmt.Errorf("favorite entry %s has no author link", sid)
		}
	}
	return sm, isFav, nil
}

// DownloadMetadata fetches a story's first chapter page and returns its
// metadata together with the ordered table of contents. This is the
// content-oriented fetch used at archive time.
func (a *Adapter) DownloadMetadata(storyID string) (models.StorySummary, []models.ChapterInfo, error) {
	data, err := a.client.Get(a.storyURL(storyID, 1))
	if err != nil {
		return models.StorySummary{}, nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return models.StorySummary{}, nil, err
	}

	sm, err := a.parseStoryPage(doc, storyID)
	if err != nil {
		return models.StorySummary{}, nil, err
	}

	toc := a.parseTOC(doc, storyID)
	sm.Chapters = len(toc)
	return sm, toc, nil
}

// parseTOC reads the chapter dropdown into an ordered table of
// contents. The option text carries an "N. " prefix that is stripped.
func (a *Adapter) parseTOC(doc *goquery.Document, storyID string) []models.ChapterInfo {
	opts := doc.Find("select#chap_select").First().Find("option")
	if opts.Length() == 0 {
		// A oneshot has no chapter list.
		return []models.ChapterInfo{{Title: "Chapter 1", URL: a.storyURL(storyID, 1)}}
	}
	var toc []models.ChapterInfo
	opts.Each(func(i int, opt *goquery.Selection) {
		t := opt.Text()
		if idx := strings.Index(t, ". "); idx >= 0 {
			t = t[idx+2:]
		}
		toc = append(toc, models.ChapterInfo{Title: t, URL: a.storyURL(storyID, i+1)})
	})
	return toc
}

func (a *Adapter) parseStoryPage(doc *goquery.Document, storyID string) (models.StorySummary, error) {
	top := doc.Find("div#profile_top").First()
	if top.Length() == 0 {
		return models.StorySummary{}, fmt.Errorf("ffnet: no profile_top on story page %s", storyID)
	}
	title := strings.TrimSpace(top.Find("b").First().Text())
	authorLink := top.Find("a").First()
	authorName := strings.TrimSpace(authorLink.Text())
	var authorID string
	if m := userHrefRe.FindStringSubmatch(authorLink.AttrOr("href", "")); m != nil {
		authorID = m[1]
	}
	summary := strings.TrimSpace(top.Find("div.xcontrast_txt").First().Text())

	metaText := top.Find("span.xgray").First().Text()
	genre, characters := parseListingMeta(metaText)
	words := findIntField(metaText, "Words: ")
	complete := strings.Contains(metaText, "Status: Complete")

	var updated, published time.Time
	stamps := top.Find("span[data-xutime]")
	switch stamps.Length() {
	case 0:
		return models.StorySummary{}, fmt.Errorf("ffnet: no timestamps on story page %s", storyID)
	case 1:
		published = attrUnix(stamps.First(), "data-xutime")
		updated = published
	default:
		updated = attrUnix(stamps.First(), "data-xutime")
		published = attrUnix(stamps.Last(), "data-xutime")
	}

	// The category is the last link of the pre-story breadcrumb; a
	// crossover page has a different layout.
	category := "crossover"
	if links := doc.Find("div#pre_story_links a"); links.Length() > 1 {
		category = strings.TrimSpace(links.Last().Text())
	}

	return models.StorySummary{
		Title:      title,
		Summary:    summary,
		Category:   category,
		ID:         storyID,
		Words:      words,
		Characters: characters,
		Author: models.AuthorInfo{
			Name: authorName,
			ID:   authorID,
			URL:  fmt.Sprintf("https://%s/u/%s/", a.hostname, authorID),
			Site: a.key,
		},
		Genre:     genre,
		Site:      a.key,
		Updated:   updated,
		Published: published,
		Complete:  complete,
		URL:       a.storyURL(storyID, 1),
	}, nil
}

var (
	storytextOpenRe = regexp.MustCompile(`<div[^>]*id='storytext'[^>]*>`)
	storytextEndRe  = regexp.MustCompile(`</div>`)
)

// DownloadChapter fetches one chapter page and extracts the story text.
// The extraction works on the raw HTML because FF.net's markup is
// occasionally bad enough to confuse a real parser.
func (a *Adapter) DownloadChapter(story models.StorySummary, num int, ch models.ChapterInfo) (string, error) {
	url := ch.URL
	if url == "" {
		url = a.storyURL(story.ID, num+1)
	}
	data, err := a.client.Get(url)
	if err != nil {
		return "", err
	}
	return extractStoryText(string(data))
}

func extractStoryText(page string) (string, error) {
	open := storytextOpenRe.FindStringIndex(page)
	if open == nil {
		return "", fmt.Errorf("ffnet: storytext div not found")
	}
	rest := page[open[1]:]
	end := storytextEndRe.FindStringIndex(rest)
	if end == nil {
		return "", fmt.Errorf("ffnet: storytext div not terminated")
	}
	return rest[:end[0]], nil
}

// parseListingMeta scans the " - " separated metadata line of a story
// ("Rated: T - English - Romance/Humor - Harry P., Hermione G. -
// Chapters: 12 - Words: 48,231 - ...") for the genre and character
// segments, which are the only positional fields.
func parseListingMeta(meta string) (genre, characters string) {
	meta = strings.TrimPrefix(strings.TrimSpace(meta), "Crossover - ")
	var unknown []string
	sawRated := false
	for _, piece := range strings.Split(meta, " - ") {
		piece = strings.TrimSpace(piece)
		if piece == "" {
			continue
		}
		if strings.HasPrefix(piece, "Rated:") {
			sawRated = true
			continue
		}
		if !sawRated || strings.Contains(piece, ":") || piece == "Complete" {
			continue
		}
		unknown = append(unknown, piece)
	}
	// After the rating comes the language, then optionally the genre,
	// then optionally the character list.
	if len(unknown) >= 2 {
		genre = unknown[1]
	}
	if len(unknown) >= 3 {
		characters = strings.Join(unknown[2:], " - ")
	}
	return genre, characters
}

// ownText returns the text of a selection's direct text-node children,
// skipping nested elements.
func ownText(sel *goquery.Selection) string {
	var sb strings.Builder
	sel.Contents().Each(func(i int, c *goquery.Selection) {
		for _, node := range c.Nodes {
			if node.Type == html.TextNode {
				sb.WriteString(node.Data)
			}
		}
	})
	return sb.String()
}

// findIntField pulls a numeric field like "Words: 48,231" out of a
// metadata line. Returns zero when the field is absent.
func findIntField(meta, label string) int {
	idx := strings.Index(meta, label)
	if idx < 0 {
		return 0
	}
	rest := meta[idx+len(label):]
	var digits strings.Builder
	for _, r := range rest {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		} else if r != ',' {
			break
		}
	}
	n, _ := strconv.Atoi(digits.String())
	return n
}

func attrInt(sel *goquery.Selection, name string) int {
	n, _ := strconv.Atoi(sel.AttrOr(name, "0"))
	return n
}

func attrUnix(sel *goquery.Selection, name string) time.Time {
	return time.Unix(int64(attrInt(sel, name)), 0).UTC()
}
