package repository

import (
	"note-bookmark-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type BookmarkRepository = Repository[domain.Bookmark]

func NewBookmarkRepository(db *kivik.DB) BookmarkRepository {
	return newDocumentRepository[domain.Bookmark](db, "bookmark")
}
