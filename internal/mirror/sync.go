package mirror

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"github.com/ffmirror/ffmirror-go/internal/models"
	"github.com/ffmirror/ffmirror-go/internal/sites"
	"github.com/ffmirror/ffmirror-go/internal/util"
)

// NeedsUpdate reports whether a stored story differs from an incoming
// summary. Word count, chapter count and the updated timestamp are the
// sole change-detection signal; purely descriptive fields never gate
// an update on their own.
func NeedsUpdate(st *models.Story, sm models.StorySummary) bool {
	return st.Words != sm.Words ||
		st.Chapters != sm.Chapters ||
		!st.Updated.Equal(sm.Updated.UTC())
}

// SyncAuthor fetches an author's current listing from its archive and
// reconciles it into the store: the author record itself, every
// authored and favorited story, favorite links and derived tags. The
// author is created on first encounter. All mutations commit as a
// single transaction; an adapter failure aborts the sync with nothing
// committed, after being reported through the sink.
func (s *Service) SyncAuthor(archive, siteID string, sink Sink) (*models.Author, error) {
	adapter, ok := sites.Get(archive)
	if !ok {
		return nil, fmt.Errorf("no site adapter registered for archive %q", archive)
	}

	ao, err := s.st.GetAuthor(archive, siteID)
	if err != nil {
		return nil, err
	}

	authored, favorited, info, err := adapter.DownloadList(siteID)
	if err != nil {
		name := siteID
		if ao != nil && ao.Name != "" {
			name = ao.Name
		}
		emit(sink, models.Event{Kind: models.EventError, Name: name,
			Progress: -1, Total: -1, Info: err.Error()})
		return nil, fmt.Errorf("list download for %s/%s: %w", archive, siteID, err)
	}

	// Index of this author's already-known stories (authored and
	// favorited) by site id, loaded eagerly so reconciliation never
	// re-queries the store per listing entry.
	index := make(map[string]*models.Story)
	if ao != nil {
		index, err = s.st.LoadAuthorIndex(ao.ID)
		if err != nil {
			return nil, err
		}
	}

	tx, err := s.st.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	if ao == nil {
		ao = &models.Author{
			Archive:      archive,
			SiteID:       siteID,
			Name:         info.Name,
			SyncInterval: DefaultSyncInterval,
		}
		if _, err := s.st.CreateAuthor(tx, ao); err != nil {
			return nil, err
		}
	} else if info.Name != "" && info.Name != ao.Name {
		if err := s.st.UpdateAuthorName(tx, ao.ID, info.Name); err != nil {
			return nil, err
		}
		ao.Name = info.Name
	}

	// Stamped unconditionally, even when nothing changed. The stamp
	// drives scheduling order, not change detection.
	now := time.Now().UTC()
	if err := s.st.TouchAuthorSynced(tx, ao.ID, now); err != nil {
		return nil, err
	}
	ao.MdSynced = &now

	for _, sm := range authored {
		if _, err := s.storyFromSummary(tx, sm, ao.ID, index[sm.ID]); err != nil {
			// One broken story must not block its siblings; the rest
			// of the author's reconciliation still commits.
			emit(sink, models.Event{Kind: models.EventError, Name: sm.Title,
				Progress: -1, Total: -1, Info: err.Error()})
			log.Printf("sync %s/%s: skipping authored story %s: %v", archive, siteID, sm.ID, err)
		}
	}

	for _, sm := range favorited {
		if err := s.syncFavorite(tx, ao, sm, index); err != nil {
			emit(sink, models.Event{Kind: models.EventError, Name: sm.Title,
				Progress: -1, Total: -1, Info: err.Error()})
			log.Printf("sync %s/%s: skipping favorite story %s: %v", archive, siteID, sm.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return ao, nil
}

// syncFavorite reconciles one favorited-list entry: resolve the
// story's owning author (preferring the author already linked to a
// known local row, then an existing author record, then a lazily
// created stub), update the story, and link it into the favoriting
// author's set.
func (s *Service) syncFavorite(tx *sql.Tx, ao *models.Author, sm models.StorySummary,
	index map[string]*models.Story) error {

	existing := index[sm.ID]

	var ownerID int64
	switch {
	case existing != nil && existing.AuthorID != 0:
		ownerID = existing.AuthorID
	case sm.Author.ID != "":
		fao, err := s.st.GetAuthorTx(tx, ao.Archive, sm.Author.ID)
		if err != nil {
			return err
		}
		if fao == nil {
			// A stub author: created only to own the favorited story,
			// with whatever the byline told us. Stubs are never
			// promoted to in_mirror automatically.
			fao = &models.Author{
				Archive:      ao.Archive,
				SiteID:       sm.Author.ID,
				Name:         sm.Author.Name,
				SyncInterval: DefaultSyncInterval,
			}
			if _, err := s.st.CreateAuthor(tx, fao); err != nil {
				return err
			}
		}
		ownerID = fao.ID
	default:
		return fmt.Errorf("favorite story %s/%s: owning author cannot be resolved", sm.Site, sm.ID)
	}

	so, err := s.storyFromSummary(tx, sm, ownerID, existing)
	if err != nil {
		return err
	}
	if err := s.st.AddFavStory(tx, ao.ID, so.ID); err != nil {
		return err
	}
	return s.st.AddFavAuthor(tx, ao.ID, ownerID)
}

// storyFromSummary gets or creates the story row for a summary, then
// applies the change-detection rule: when the story changed, all
// descriptive fields are overwritten, tags are re-derived from the
// category (union, never removal), and the author link is set.
func (s *Service) storyFromSummary(tx *sql.Tx, sm models.StorySummary,
	authorID int64, existing *models.Story) (*models.Story, error) {

	so := existing
	if so == nil {
		var err error
		so, err = s.st.GetStoryTx(tx, sm.Site, sm.ID)
		if err != nil {
			return nil, err
		}
	}
	if so == nil {
		var err error
		so, err = s.st.CreateStory(tx, sm.Site, sm.ID)
		if err != nil {
			return nil, err
		}
	}

	if !NeedsUpdate(so, sm) {
		return so, nil
	}

	if err := s.st.UpdateStoryMeta(tx, so.ID, sm, authorID); err != nil {
		return nil, err
	}
	if err := s.applyTags(tx, so.ID, sm.Category); err != nil {
		return nil, err
	}

	so.Title = sm.Title
	so.AuthorID = authorID
	so.Words = sm.Words
	so.Chapters = sm.Chapters
	so.Published = sm.Published.UTC()
	so.Updated = sm.Updated.UTC()
	so.Category = sm.Category
	so.Summary = sm.Summary
	so.Characters = sm.Characters
	so.Complete = sm.Complete
	so.Genre = sm.Genre
	return so, nil
}

// applyTags derives fandom tags from the category string and attaches
// them to the story. Both the tag creation and the attachment are
// idempotent.
func (s *Service) applyTags(tx *sql.Tx, storyID int64, category string) error {
	for _, name := range util.CategoryTags(category) {
		tag, err := s.st.GetOrCreateTag(tx, name)
		if err != nil {
			return err
		}
		if err := s.st.AttachTag(tx, storyID, tag.ID); err != nil {
			return err
		}
	}
	return nil
}
