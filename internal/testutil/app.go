package testutil

import (
	"path/filepath"
	"testing"

	"github.com/ffmirror/ffmirror-go/internal/config"
	"github.com/ffmirror/ffmirror-go/internal/core"
)

// SetupApp builds a full application instance backed by a temporary
// database and mirror directory. Background jobs are registered but
// the scheduler is not started.
func SetupApp(t *testing.T) *core.App {
	t.Helper()

	dir := t.TempDir()
	cfg := &config.Config{
		Port:           8365,
		UpdateInterval: 0,
	}
	cfg.Database.Path = filepath.Join(dir, "ffmeta.sqlite")
	cfg.Mirror.Path = filepath.Join(dir, "mirror")

	app, err := core.NewWithConfig(cfg)
	if err != nil {
		t.Fatalf("Failed to set up application: %v", err)
	}
	t.Cleanup(app.Close)
	return app
}
