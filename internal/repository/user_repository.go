package repository

import (
	"context"
	"errors"
	"fmt"

	"note-bookmark-server/internal/domain"

	"github.com/go-kivik/kivik/v4"
)

type UserRepository interface {
	Repository[domain.User]
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
}

type userRepository struct {
	*documentRepository[domain.User]
}

func NewUserRepository(db *kivik.DB) UserRepository {
	return &userRepository{
		documentRepository: newDocumentRepository[domain.User](db, "user"),
	}
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	user, err := r.findOne(ctx, map[string]any{"email": email})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to query user by email: %w", err)
	}
	return user, nil
}

func (r *userRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	_, err := r.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}
