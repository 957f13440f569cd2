package models

// EventKind classifies progress events emitted by the mirror core.
type EventKind string

const (
	EventAuthor  EventKind = "author"
	EventStory   EventKind = "story"
	EventChapter EventKind = "chapter"
	EventError   EventKind = "error"
)

// Event is a discrete progress report. Progress and Total are -1 when
// not applicable. Info carries the diagnostic string for error events.
type Event struct {
	Kind     EventKind `json:"kind"`
	Name     string    `json:"name"`
	Progress int       `json:"progress"`
	Total    int       `json:"total"`
	Info     string    `json:"info,omitempty"`
}
