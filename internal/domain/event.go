package domain

type EventType string

const (
	EventNoteCreated     EventType = "note.created"
	EventNoteUpdated     EventType = "note.updated"
	EventNoteDeleted     EventType = "note.deleted"
	EventBookmarkCreated EventType = "bookmark.created"
	EventBookmarkUpdated EventType = "bookmark.updated"
	EventBookmarkDeleted EventType = "bookmark.deleted"
)

// EventPublisher delivers change events to a user's live connections.
type EventPublisher interface {
	Publish(userID string, eventType EventType, payload interface{})
}
