package domain

import "time"

type Bookmark struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	URL       string    `json:"url"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type BookmarkRequest struct {
	Title string   `json:"title"`
	URL   string   `json:"url"`
	Tags  []string `json:"tags"`
}

// Patch keeps the stored title when the update leaves it empty.
func (r *BookmarkRequest) Patch() map[string]any {
	patch := map[string]any{
		"url": r.URL,
	}
	if r.Title != "" {
		patch["title"] = r.Title
	}
	if r.Tags != nil {
		patch["tags"] = r.Tags
	}
	return patch
}
