package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kivik/kivik/v4"
)

var ErrNotFound = errors.New("document not found")

const docTypeField = "doc_type"

// Repository is the persistence contract shared by every entity.
type Repository[T any] interface {
	Create(ctx context.Context, doc *T) (*T, error)
	FindByID(ctx context.Context, id string) (*T, error)
	FindAll(ctx context.Context, filter map[string]any) ([]*T, error)
	UpdateByID(ctx context.Context, id string, patch map[string]any) (*T, error)
	DeleteByID(ctx context.Context, id string) (*T, error)
}

// documentRepository stores entities of one kind in a shared CouchDB
// database. Document IDs are "<kind>:<id>" and every document carries a
// doc_type field so Mango selectors can be scoped to the kind.
type documentRepository[T any] struct {
	db   *kivik.DB
	kind string
}

func newDocumentRepository[T any](db *kivik.DB, kind string) *documentRepository[T] {
	return &documentRepository[T]{
		db:   db,
		kind: kind,
	}
}

func (r *documentRepository[T]) docID(id string) string {
	return fmt.Sprintf("%s:%s", r.kind, id)
}

func (r *documentRepository[T]) Create(ctx context.Context, doc *T) (*T, error) {
	fields, err := toFields(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", r.kind, err)
	}

	id, _ := fields["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("failed to create %s: missing id", r.kind)
	}
	fields[docTypeField] = r.kind

	if _, err := r.db.Put(ctx, r.docID(id), fields); err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", r.kind, err)
	}

	return doc, nil
}

func (r *documentRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	row := r.db.Get(ctx, r.docID(id))

	var doc T
	if err := row.ScanDoc(&doc); err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s: %w", r.kind, err)
	}

	return &doc, nil
}

// FindAll merges filter into a selector scoped to this kind.
func (r *documentRepository[T]) FindAll(ctx context.Context, filter map[string]any) ([]*T, error) {
	selector := make(map[string]any, len(filter)+1)
	for k, v := range filter {
		selector[k] = v
	}
	selector[docTypeField] = r.kind

	rows := r.db.Find(ctx, map[string]interface{}{
		"selector": selector,
	})
	defer rows.Close()

	docs := make([]*T, 0)
	for rows.Next() {
		var doc T
		if err := rows.ScanDoc(&doc); err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", r.kind, err)
		}
		docs = append(docs, &doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", r.kind, err)
	}

	return docs, nil
}

func (r *documentRepository[T]) findOne(ctx context.Context, filter map[string]any) (*T, error) {
	selector := make(map[string]any, len(filter)+1)
	for k, v := range filter {
		selector[k] = v
	}
	selector[docTypeField] = r.kind

	rows := r.db.Find(ctx, map[string]interface{}{
		"selector": selector,
		"limit":    1,
	})
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("failed to query %s: %w", r.kind, err)
		}
		return nil, ErrNotFound
	}

	var doc T
	if err := rows.ScanDoc(&doc); err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", r.kind, err)
	}

	return &doc, nil
}

// UpdateByID applies patch to the stored document and returns the new state.
func (r *documentRepository[T]) UpdateByID(ctx context.Context, id string, patch map[string]any) (*T, error) {
	existing, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	for k, v := range patch {
		switch k {
		case "_id", "_rev", "id", docTypeField:
			continue
		}
		existing[k] = v
	}
	existing["updated_at"] = time.Now()

	if _, err := r.db.Put(ctx, r.docID(id), existing); err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", r.kind, err)
	}

	return fromFields[T](existing)
}

func (r *documentRepository[T]) DeleteByID(ctx context.Context, id string) (*T, error) {
	existing, err := r.load(ctx, id)
	if err != nil {
		return nil, err
	}

	rev, ok := existing["_rev"].(string)
	if !ok {
		return nil, fmt.Errorf("failed to get %s revision", r.kind)
	}

	if _, err := r.db.Delete(ctx, r.docID(id), rev); err != nil {
		return nil, fmt.Errorf("failed to delete %s: %w", r.kind, err)
	}

	return fromFields[T](existing)
}

func (r *documentRepository[T]) load(ctx context.Context, id string) (map[string]interface{}, error) {
	var existing map[string]interface{}
	row := r.db.Get(ctx, r.docID(id))
	if err := row.ScanDoc(&existing); err != nil {
		if isNotFound(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch %s: %w", r.kind, err)
	}
	return existing, nil
}

func isNotFound(err error) bool {
	return kivik.HTTPStatus(err) == http.StatusNotFound
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

// ContainsTag is a selector value matching array fields that hold tag.
func ContainsTag(tag string) map[string]any {
	return map[string]any{
		"$elemMatch": map[string]any{"$eq": tag},
	}
}
