package domain

import "time"

type Note struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type NoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// Patch lists the fields an update may change. Ownership is never part of
// it. Tags are only replaced when the request carried them.
func (r *NoteRequest) Patch() map[string]any {
	patch := map[string]any{
		"title":   r.Title,
		"content": r.Content,
	}
	if r.Tags != nil {
		patch["tags"] = r.Tags
	}
	return patch
}

func NormalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}
