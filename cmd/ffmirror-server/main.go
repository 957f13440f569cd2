package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ffmirror/ffmirror-go/internal/api"
	"github.com/ffmirror/ffmirror-go/internal/config"
	"github.com/ffmirror/ffmirror-go/internal/core"
	"github.com/ffmirror/ffmirror-go/internal/fetch"
	"github.com/ffmirror/ffmirror-go/internal/jobs"
	"github.com/ffmirror/ffmirror-go/internal/sites"
	"github.com/ffmirror/ffmirror-go/internal/sites/ffnet"
)

func main() {
	log.SetOutput(os.Stdout)
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// Initialize the core application components
	app, err := core.New()
	if err != nil {
		log.Fatalf("Fatal error during application setup: %v", err)
	}
	defer app.Close()

	// Register all available site adapters here.
	client := fetch.New(
		time.Duration(app.Config().Fetch.DelayMs)*time.Millisecond,
		app.Config().Fetch.Retries,
		app.Config().Fetch.UserAgent,
	)
	sites.Register(ffnet.New(client))
	sites.Register(ffnet.NewFictionPress(client))

	// Pick up edits to config.yml without a restart. Only the settings
	// read per update run can change live; port and database path are
	// fixed at startup.
	config.Watch(func(c *config.Config) {
		cfg := app.Config()
		cfg.MaxAuthors = c.MaxAuthors
		cfg.Fetch = c.Fetch
	})

	// Start the scheduled mirror update job.
	jobs.StartJobs(app)

	// Setup the API server
	server := api.NewServer(app)
	addr := fmt.Sprintf(":%d", app.Config().Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: server.Router(),
	}

	// --- Graceful Shutdown ---
	// Start the server in a goroutine so it doesn't block.
	go func() {
		log.Printf("Starting web server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not start server: %v", err)
		}
	}()

	// Wait for an interrupt signal.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Create a context with a timeout to allow existing connections to finish.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// Attempt a graceful shutdown.
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting.")
}
