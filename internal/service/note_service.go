package service

import (
	"context"
	"errors"
	"slices"
	"time"

	"note-bookmark-server/internal/domain"
	"note-bookmark-server/internal/repository"

	"github.com/google/uuid"
)

type NoteService struct {
	repo   repository.NoteRepository
	events domain.EventPublisher
}

func NewNoteService(repo repository.NoteRepository, events domain.EventPublisher) *NoteService {
	return &NoteService{
		repo:   repo,
		events: events,
	}
}

func (s *NoteService) Create(ctx context.Context, req *domain.NoteRequest, ownerID string) (*domain.Note, error) {
	now := time.Now()
	note := &domain.Note{
		ID:        uuid.New().String(),
		UserID:    ownerID,
		Title:     req.Title,
		Content:   req.Content,
		Tags:      domain.NormalizeTags(req.Tags),
		CreatedAt: now,
		UpdatedAt: now,
	}

	created, err := s.repo.Create(ctx, note)
	if err != nil {
		return nil, err
	}

	s.publish(ownerID, domain.EventNoteCreated, created)
	return created, nil
}

func (s *NoteService) GetByID(ctx context.Context, id, callerID string) (*domain.Note, error) {
	return s.owned(ctx, id, callerID)
}

// GetAll lists the caller's notes. The owner constraint overrides any
// user_id present in filters.
func (s *NoteService) GetAll(ctx context.Context, callerID string, filters map[string]any) ([]*domain.Note, error) {
	query := make(map[string]any, len(filters)+1)
	for k, v := range filters {
		query[k] = v
	}
	query["user_id"] = callerID

	notes, err := s.repo.FindAll(ctx, query)
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(notes, func(a, b *domain.Note) int {
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return notes, nil
}

func (s *NoteService) UpdateByID(ctx context.Context, id string, req *domain.NoteRequest, callerID string) (*domain.Note, error) {
	if _, err := s.owned(ctx, id, callerID); err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateByID(ctx, id, req.Patch())
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	s.publish(callerID, domain.EventNoteUpdated, updated)
	return updated, nil
}

func (s *NoteService) DeleteByID(ctx context.Context, id, callerID string) (*domain.Note, error) {
	if _, err := s.owned(ctx, id, callerID); err != nil {
		return nil, err
	}

	deleted, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	s.publish(callerID, domain.EventNoteDeleted, map[string]string{"id": id})
	return deleted, nil
}

func (s *NoteService) owned(ctx context.Context, id, callerID string) (*domain.Note, error) {
	note, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNoteNotFound
		}
		return nil, err
	}

	if note.UserID != callerID {
		return nil, ErrNoteNotFound
	}

	return note, nil
}

func (s *NoteService) publish(userID string, eventType domain.EventType, payload interface{}) {
	if s.events != nil {
		s.events.Publish(userID, eventType, payload)
	}
}
