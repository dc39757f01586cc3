package repository

import (
	"note-bookmark-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type NoteRepository = Repository[domain.Note]

func NewNoteRepository(db *kivik.DB) NoteRepository {
	return newDocumentRepository[domain.Note](db, "note")
}
