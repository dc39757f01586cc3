package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"note-bookmark-server/internal/domain"
	"note-bookmark-server/internal/metrics"
	"note-bookmark-server/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	UnknownTitle = "Unknown Title"
	NoTitleFound = "No title found"
)

type TitleFetcher interface {
	FetchTitle(ctx context.Context, url string) (string, error)
}

type BookmarkService struct {
	repo   repository.BookmarkRepository
	titles TitleFetcher
	events domain.EventPublisher
	log    logrus.FieldLogger
}

func NewBookmarkService(
	repo repository.BookmarkRepository,
	titles TitleFetcher,
	events domain.EventPublisher,
	log logrus.FieldLogger,
) *BookmarkService {
	return &BookmarkService{
		repo:   repo,
		titles: titles,
		events: events,
		log:    log,
	}
}

func (s *BookmarkService) Create(ctx context.Context, req *domain.BookmarkRequest, ownerID string) (*domain.Bookmark, error) {
	title := req.Title
	if title == "" && req.URL != "" {
		title = s.deriveTitle(ctx, req.URL)
	}

	now := time.Now()
	bookmark := &domain.Bookmark{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		Title:     title,
		URL:       req.URL,
		Tags:      domain.NormalizeTags(req.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, bookmark)
	if err != nil {
		return nil, err
	}

	s.publish(ownerID, domain.EventBookmarkCreated, created)
	return created, nil
}

// deriveTitle never fails: an unreachable page falls back to UnknownTitle.
func (s *BookmarkService) deriveTitle(ctx context.Context, url string) string {
	if s.titles == nil {
		return UnknownTitle
	}

	title, err := s.titles.FetchTitle(ctx, url)
	if err != nil {
		metrics.RecordTitleFetch("error")
		s.log.WithError(err).WithField("url", url).Warn("failed to fetch page title")
		return UnknownTitle
	}

	if title == "" {
		metrics.RecordTitleFetch("empty")
		return NoTitleFound
	}

	metrics.RecordTitleFetch("ok")
	return title
}

func (s *BookmarkService) GetByID(ctx context.Context, id, callerID string) (*domain.Bookmark, error) {
	return s.owned(ctx, id, callerID)
}

func (s *BookmarkService) GetAll(ctx context.Context, callerID string, filters map[string]any) ([]*domain.Bookmark, error) {
	query := make(map[string]any, len(filters)+1)
	for k, v := range filters {
		query[k] = v
	}
	query["user_id"] = callerID

	bookmarks, err := s.repo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(bookmarks, func(a, b *domain.Bookmark) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return bookmarks, nil
}

func (s *BookmarkService) UpdateByID(ctx context.Context, id string, req *domain.BookmarkRequest, callerID string) (*domain.Bookmark, error) {
	if _, err := s.owned(ctx, id, callerID); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateByID(ctx, id, req.Patch())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookmarkNotFound
		}
		return nil, err
	}

	s.publish(callerID, domain.EventBookmarkUpdated, updated)
	return updated, nil
}

func (s *BookmarkService) DeleteByID(ctx context.Context, id, callerID string) (*domain.Bookmark, error) {
	if _, err := s.owned(ctx, id, callerID); err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookmarkNotFound
		}
		return nil, err
	}

	s.publish(callerID, domain.EventBookmarkDeleted, map[string]string{"id": id})
	return deleted, nil
}

func (s *BookmarkService) owned(ctx context.Context, id, callerID string) (*domain.Bookmark, error) {
	bookmark, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrBookmarkNotFound
		}
		return nil, err
	}

	if bookmark.UserID != callerID {
		return nil, ErrBookmarkNotFound
	}

	return bookmark, nil
}

func (s *BookmarkService) publish(userID string, eventType domain.EventType, payload interface{}) {
	if s.events != nil {
		s.events.Publish(userID, eventType, payload)
	}
}
