// Package repositorytest provides map-backed repositories for tests.
package repositorytest

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sync"
	"time"

	"note-bookmark-server/internal/domain"
	"note-bookmark-server/internal/repository"
)

// Memory stores documents as field maps keyed by id and understands the
// selector subset the services emit: equality and {"$elemMatch":{"$eq":v}}.
type Memory[T any] struct {
	mu   sync.Mutex
	docs map[string]map[string]interface{}

	// Err, when set, is returned by every call.
	Err error
}

func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{docs: make(map[string]map[string]interface{})}
}

func (m *Memory[T]) Create(ctx context.Context, doc *T) (*T, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	fields, err := toFields(doc)
	if err != nil {
		return nil, err
	}
	id, _ := fields["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("missing id")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.docs[id]; exists {
		return nil, fmt.Errorf("document %s already exists", id)
	}
	m.docs[id] = fields
	return doc, nil
}

func (m *Memory[T]) FindByID(ctx context.Context, id string) (*T, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	fields, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return fromFields[T](fields)
}

func (m *Memory[T]) FindAll(ctx context.Context, filter map[string]any) ([]*T, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*T, 0)
	for _, fields := range m.docs {
		if !matches(fields, filter) {
			continue
		}
		doc, err := fromFields[T](fields)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, nil
}

func (m *Memory[T]) UpdateByID(ctx context.Context, id string, patch map[string]any) (*T, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	fields, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}

	encoded, err := toFields(patch)
	if err != nil {
		return nil, err
	}
	for k, v := range encoded {
		if k == "id" {
			continue
		}
		fields[k] = v
	}
	fields["updated_at"] = time.Now().Format(time.RFC3339Nano)

	return fromFields[T](fields)
}

func (m *Memory[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	fields, ok := m.docs[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	delete(m.docs, id)
	return fromFields[T](fields)
}

func (m *Memory[T]) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}

// Users adds the e-mail lookups of repository.UserRepository.
type Users struct {
	*Memory[domain.User]
}

func NewUsers() *Users {
	return &Users{Memory: NewMemory[domain.User]()}
}

func (u *Users) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	users, err := u.FindAll(ctx, map[string]any{"email": email})
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, repository.ErrNotFound
	}
	return users[0], nil
}

func (u *Users) EmailExists(ctx context.Context, email string) (bool, error) {
	users, err := u.FindAll(ctx, map[string]any{"email": email})
	if err != nil {
		return false, err
	}
	return len(users) > 0, nil
}

var (
	_ repository.UserRepository     = (*Users)(nil)
	_ repository.NoteRepository     = (*Memory[domain.Note])(nil)
	_ repository.BookmarkRepository = (*Memory[domain.Bookmark])(nil)
)

func matches(doc map[string]interface{}, selector map[string]any) bool {
	for field, want := range selector {
		got := doc[field]

		if cond, ok := want.(map[string]any); ok {
			if em, ok := cond["$elemMatch"].(map[string]any); ok {
				items, _ := got.([]interface{})
				found := false
				for _, item := range items {
					if reflect.DeepEqual(item, em["$eq"]) {
						found = true
						break
					}
				}
				if !found {
					return false
				}
				continue
			}
		}

		if !reflect.DeepEqual(got, want) {
			return false
		}
	}
	return true
}

func toFields(v any) (map[string]interface{}, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var fields map[string]interface{}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	return fields, nil
}

func fromFields[T any](fields map[string]interface{}) (*T, error) {
	raw, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	var doc T
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return &doc, nil
}
