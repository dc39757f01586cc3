package handler

import (
	"context"
	"net/http"
	"time"

	"note-bookmark-server/pkg/response"
)

// Pinger reports whether the document store is reachable.
type Pinger interface {
	Ping(ctx context.Context) (bool, error)
}

type HealthHandler struct {
	store Pinger
}

func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	ok, err := h.store.Ping(ctx)
	if err != nil || !ok {
		response.JSON(w, http.StatusServiceUnavailable, map[string]string{
			"status":   "unhealthy",
			"database": "unreachable",
		}, "Database unreachable")
		return
	}

	response.Success(w, map[string]string{
		"status":   "healthy",
		"database": "reachable",
	}, "OK")
}
