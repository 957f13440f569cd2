// It defines the API server, sets up the routes (endpoints)
// using chi, and links them to the handler functions.

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/ffmirror/ffmirror-go/internal/core"
	"github.com/ffmirror/ffmirror-go/internal/store"
	"github.com/ffmirror/ffmirror-go/internal/websocket"
)

// Server holds the dependencies for our API.
type Server struct {
	app   *core.App
	store *store.Store
}

// NewServer creates a new Server instance.
func NewServer(app *core.App) *Server {
	return &Server{
		app:   app,
		store: store.New(app.DB()),
	}
}

// Store returns the store instance.
func (s *Server) Store() *store.Store {
	return s.store
}

// Router sets up and returns the main router for the application.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)    // Logs requests to the console
	r.Use(middleware.Recoverer) // Recovers from panics
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/api", func(r chi.Router) {
		r.Get("/sites", s.handleListSites)
		r.Get("/authors", s.handleListAuthors)
		r.Get("/authors/{authorID}", s.handleGetAuthor)
		r.Get("/stories/{storyID}", s.handleGetStory)
		r.Get("/tags", s.handleListTags)
		r.Get("/downloads", s.handleListDownloadStatus)

		r.Post("/update", s.handleRunUpdate)
		r.Get("/jobs", s.handleGetJobsStatus)

		r.Get("/ws", func(w http.ResponseWriter, req *http.Request) {
			websocket.ServeWs(s.app.WsHub(), w, req)
		})
	})

	return r
}
