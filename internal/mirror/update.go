package mirror

import (
	"log"

	"github.com/ffmirror/ffmirror-go/internal/models"
)

// RunUpdate drives one sync+archive cycle over every in-mirror author,
// stalest first (never-synced authors lead). maxAuthors caps how many
// authors one invocation processes; zero means no cap. The remainder
// is naturally picked up by the next run, since ordering is by
// staleness.
//
// A failure in one author never stops the run: sync and archive report
// their own errors through the sink, and the scheduler just advances.
func (s *Service) RunUpdate(sink Sink, maxAuthors int) error {
	authors, err := s.st.ListInMirrorAuthorsByStaleness()
	if err != nil {
		return err
	}

	total := len(authors)
	if maxAuthors > 0 && maxAuthors < total {
		total = maxAuthors
	}

	for n, ao := range authors {
		if maxAuthors > 0 && n >= maxAuthors {
			break
		}
		emit(sink, models.Event{Kind: models.EventAuthor, Name: ao.Name,
			Progress: n + 1, Total: total})

		// Errors are already surfaced via the sink by the failing
		// stage; swallowing them here is what keeps the run going.
		if _, err := s.SyncAuthor(ao.Archive, ao.SiteID, sink); err != nil {
			log.Printf("update: sync failed for %s/%s: %v", ao.Archive, ao.SiteID, err)
			continue
		}
		if err := s.ArchiveAuthor(ao, sink); err != nil {
			log.Printf("update: archive failed for %s/%s: %v", ao.Archive, ao.SiteID, err)
		}
	}
	return nil
}
