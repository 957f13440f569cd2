// Package sites holds the registry of archive adapters. Registration
// is explicit: each main calls Register for the adapters it wants, so
// there is no import-time magic deciding which archives exist.
package sites

import (
	"fmt"

	"github.com/ffmirror/ffmirror-go/internal/models"
)

var registry = make(map[string]models.SiteAdapter)

// Register adds a new adapter to the registry. It's called at startup.
func Register(a models.SiteAdapter) {
	info := a.Info()
	if _, exists := registry[info.Key]; exists {
		// Panic is appropriate here as it's a developer error during setup.
		panic(fmt.Sprintf("site adapter with key '%s' is already registered", info.Key))
	}
	registry[info.Key] = a
}

// Get returns an adapter by its archive key.
func Get(key string) (models.SiteAdapter, bool) {
	a, ok := registry[key]
	return a, ok
}

// All returns information for all registered adapters.
func All() []models.SiteInfo {
	var infos []models.SiteInfo
	for _, a := range registry {
		infos = append(infos, a.Info())
	}
	return infos
}

// Reset clears the registry. Only used by tests.
func Reset() {
	registry = make(map[string]models.SiteAdapter)
}
