package mirror

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/ffmirror/ffmirror-go/internal/models"
	"github.com/ffmirror/ffmirror-go/internal/sites"
	"github.com/ffmirror/ffmirror-go/internal/util"
)

// ArchiveStory downloads a story's full content and writes one file
// per chapter under the story's mirror directory, reconciling the
// chapter rows against the fresh table of contents. The adapter's
// metadata fetch, not the stored row, is the source of truth for
// chapter titles and count at archive time.
//
// The transaction is caller-owned, so a batch can archive several
// stories before committing. Overwriting a chapter file is safe, which
// makes an interrupted pass repairable by simply running it again.
func (s *Service) ArchiveStory(tx *sql.Tx, st *models.Story, sink Sink) error {
	adapter, ok := sites.Get(st.Archive)
	if !ok {
		return fmt.Errorf("no site adapter registered for archive %q", st.Archive)
	}

	md, toc, err := adapter.DownloadMetadata(st.SiteID)
	if err != nil {
		return fmt.Errorf("metadata download for %s/%s: %w", st.Archive, st.SiteID, err)
	}

	// The directory name depends only on stable identifiers; a title
	// change must not orphan previously written files.
	relDir := util.StoryDir(st.Archive, st.SiteID)
	stDir := filepath.Join(s.mdir, relDir)
	if err := os.MkdirAll(stDir, 0o755); err != nil {
		return fmt.Errorf("creating story directory: %w", err)
	}

	// Positional reconciliation: existing rows get their title updated
	// in place, new positions get new rows. Stale trailing rows from a
	// shrunken table of contents are retained.
	for n, ch := range toc {
		if err := s.st.UpsertChapter(tx, st.ID, n, ch.Title); err != nil {
			return err
		}
	}

	for n, ch := range toc {
		emit(sink, models.Event{Kind: models.EventChapter, Name: ch.Title,
			Progress: n, Total: len(toc)})
		content, err := adapter.DownloadChapter(md, n, ch)
		if err != nil {
			return fmt.Errorf("chapter %d download for %s/%s: %w", n, st.Archive, st.SiteID, err)
		}
		fn := filepath.Join(stDir, util.ChapterFileName(n))
		if err := os.WriteFile(fn, []byte(content), 0o644); err != nil {
			return fmt.Errorf("writing chapter file: %w", err)
		}
	}

	now := time.Now().UTC()
	if err := s.st.SetStoryDownloaded(tx, st.ID, relDir, now); err != nil {
		return err
	}
	st.DownloadPath = relDir
	st.DownloadTime = &now
	st.Chapters = len(toc)
	return nil
}

// StoryToArchive archives a single story in its own transaction.
func (s *Service) StoryToArchive(st *models.Story, sink Sink) error {
	tx, err := s.st.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if err := s.ArchiveStory(tx, st, sink); err != nil {
		return err
	}
	if err := s.st.RecordDownloadStatus(tx, st.AuthorID, st.ID, "ok"); err != nil {
		return err
	}
	return tx.Commit()
}

// ArchiveAuthor flags the author as in-mirror and archives every story
// of theirs that needs content (never downloaded, or remotely updated
// since the last download). A failure in one story is reported through
// the sink and does not stop its siblings.
func (s *Service) ArchiveAuthor(ao *models.Author, sink Sink) error {
	if err := s.st.SetInMirror(ao.ID, true); err != nil {
		return err
	}
	ao.InMirror = true

	stories, err := s.st.ListStoriesNeedingArchive(ao.ID)
	if err != nil {
		return err
	}

	for n, st := range stories {
		emit(sink, models.Event{Kind: models.EventStory, Name: st.Title,
			Progress: n, Total: len(stories)})
		if err := s.StoryToArchive(st, sink); err != nil {
			emit(sink, models.Event{Kind: models.EventError,
				Name: fmt.Sprintf("%T", err), Progress: -1, Total: -1,
				Info: fmt.Sprintf("archiving %s (%s/%s): %v", st.Title, st.Archive, st.SiteID, err)})
			log.Printf("archive %s/%s: %v", st.Archive, st.SiteID, err)
		}
	}
	return nil
}
