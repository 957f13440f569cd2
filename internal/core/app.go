package core

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/ffmirror/ffmirror-go/internal/assets"
	"github.com/ffmirror/ffmirror-go/internal/config"
	"github.com/ffmirror/ffmirror-go/internal/db"
	"github.com/ffmirror/ffmirror-go/internal/jobs"
	"github.com/ffmirror/ffmirror-go/internal/mirror"
	"github.com/ffmirror/ffmirror-go/internal/store"
	"github.com/ffmirror/ffmirror-go/internal/websocket"
)

// App holds the core components of the application that are shared
// between the server and the CLI. It implements jobs.JobContext.
type App struct {
	config     *config.Config
	database   *sql.DB
	wsHub      *websocket.Hub
	jobManager *jobs.JobManager
}

// New sets up and returns a new App instance. It handles loading the
// configuration, initializing the database connection, running
// migrations, and registering background jobs.
func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return NewWithConfig(cfg)
}

// NewWithConfig is New with an externally supplied configuration,
// which is what tests use.
func NewWithConfig(cfg *config.Config) (*App, error) {
	database, err := db.InitDB(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	if err := db.RunMigrations(database, assets.MigrationsFS); err != nil {
		// We can't proceed without a valid database schema.
		database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	if err := store.New(database).EnsureArchiveDir(cfg.Mirror.Path); err != nil {
		database.Close()
		return nil, fmt.Errorf("failed to seed mirror config: %w", err)
	}

	hub := websocket.NewHub()
	go hub.Run()

	app := &App{
		config:     cfg,
		database:   database,
		wsHub:      hub,
		jobManager: jobs.NewManager(),
	}
	app.jobManager.Register(mirror.UpdateJobID, "Mirror update", mirror.UpdateJob)

	log.Println("Core application setup complete.")
	return app, nil
}

func (a *App) DB() *sql.DB                  { return a.database }
func (a *App) Config() *config.Config       { return a.config }
func (a *App) WsHub() *websocket.Hub        { return a.wsHub }
func (a *App) JobManager() *jobs.JobManager { return a.jobManager }

// Close gracefully closes the application's resources, like the DB
// connection.
func (a *App) Close() {
	if a.database != nil {
		a.database.Close()
	}
}
