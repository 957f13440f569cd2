package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ffmirror/ffmirror-go/internal/mirror"
	"github.com/ffmirror/ffmirror-go/internal/models"
	"github.com/ffmirror/ffmirror-go/internal/sites"
)

// withAuthorURL fills the author's canonical profile URL from its site
// adapter, when one is registered.
func withAuthorURL(a *models.Author) {
	if adapter, ok := sites.Get(a.Archive); ok {
		a.URL = adapter.UserURL(models.AuthorInfo{ID: a.SiteID})
	}
}

func withStoryURL(st *models.Story) {
	if adapter, ok := sites.Get(st.Archive); ok {
		st.URL = adapter.StoryURL(models.StorySummary{ID: st.SiteID})
	}
}

func (s *Server) handleListSites(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, sites.All())
}

func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) {
	authors, err := s.store.ListAuthors()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list authors")
		return
	}
	for _, a := range authors {
		withAuthorURL(a)
	}
	RespondWithJSON(w, http.StatusOK, authors)
}

func (s *Server) handleGetAuthor(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "authorID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid author ID")
		return
	}
	author, err := s.store.GetAuthorByID(id)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to fetch author")
		return
	}
	if author == nil {
		RespondWithError(w, http.StatusNotFound, "Author not found")
		return
	}
	author.Stories, err = s.store.ListStoriesByAuthor(id)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to fetch stories")
		return
	}
	withAuthorURL(author)
	for _, st := range author.Stories {
		withStoryURL(st)
	}
	RespondWithJSON(w, http.StatusOK, author)
}

func (s *Server) handleGetStory(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "storyID"), 10, 64)
	if err != nil {
		RespondWithError(w, http.StatusBadRequest, "Invalid story ID")
		return
	}
	story, err := s.store.GetStoryByID(id)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to fetch story")
		return
	}
	if story == nil {
		RespondWithError(w, http.StatusNotFound, "Story not found")
		return
	}
	if story.AllChapters, err = s.store.GetChapters(id); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to fetch chapters")
		return
	}
	if story.Tags, err = s.store.TagsForStory(id); err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to fetch tags")
		return
	}
	withStoryURL(story)
	RespondWithJSON(w, http.StatusOK, story)
}

func (s *Server) handleListTags(w http.ResponseWriter, r *http.Request) {
	tags, err := s.store.ListTagsWithCounts()
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list tags")
		return
	}
	RespondWithJSON(w, http.StatusOK, tags)
}

func (s *Server) handleListDownloadStatus(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.store.ListDownloadStatus(100)
	if err != nil {
		RespondWithError(w, http.StatusInternalServerError, "Failed to list download status")
		return
	}
	RespondWithJSON(w, http.StatusOK, statuses)
}

func (s *Server) handleRunUpdate(w http.ResponseWriter, r *http.Request) {
	err := s.app.JobManager().RunJob(mirror.UpdateJobID, s.app)
	if err != nil {
		RespondWithError(w, http.StatusConflict, err.Error()) // 409 Conflict if a job is already running
		return
	}
	RespondWithJSON(w, http.StatusAccepted, map[string]string{
		"message": "Mirror update started.",
	})
}

func (s *Server) handleGetJobsStatus(w http.ResponseWriter, r *http.Request) {
	RespondWithJSON(w, http.StatusOK, s.app.JobManager().GetStatus())
}
