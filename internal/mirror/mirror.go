// Package mirror contains the core engines of the application: the
// sync engine that reconciles remote author listings into the store,
// the archive engine that writes chapter content to disk, and the
// update scheduler that drives repeated runs across the whole mirror.
//
// All network access goes through the site adapter registry; all
// persistence goes through internal/store. The engines run strictly
// sequentially: one author at a time, one story at a time, one chapter
// at a time.
package mirror

import (
	"time"

	"github.com/ffmirror/ffmirror-go/internal/models"
	"github.com/ffmirror/ffmirror-go/internal/store"
)

// DefaultSyncInterval is the resync interval assigned to authors on
// first encounter.
const DefaultSyncInterval = 24 * time.Hour

// Sink receives progress events from the engines. A nil sink is valid
// and discards everything.
type Sink func(models.Event)

// Service bundles the store and the mirror root directory. It replaces
// the process-wide "current mirror" of older designs; callers pass it
// explicitly.
type Service struct {
	st   *store.Store
	mdir string
}

func New(st *store.Store, mirrorDir string) *Service {
	return &Service{st: st, mdir: mirrorDir}
}

// Store exposes the underlying store for read-only callers.
func (s *Service) Store() *store.Store {
	return s.st
}

func emit(sink Sink, ev models.Event) {
	if sink != nil {
		sink(ev)
	}
}
