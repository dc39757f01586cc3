package handler

import (
	"net/http"

	"note-bookmark-server/internal/metrics"
	"note-bookmark-server/pkg/response"

	"github.com/gorilla/mux"
)

type Handlers struct {
	Auth      *AuthHandler
	Notes     *NoteHandler
	Bookmarks *BookmarkHandler
	WebSocket *WebSocketHandler
	Health    *HealthHandler
}

// NewRouter mounts the API under /api. requireAuth guards every route but
// register, login and logout; rateLimit may be nil.
func NewRouter(h Handlers, requireAuth, rateLimit mux.MiddlewareFunc) *mux.Router {
	r := mux.NewRouter()
	r.Use(metrics.InstrumentHandler)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.NotFound(w, "Route not found")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if h.Health != nil {
		r.HandleFunc("/health", h.Health.Health).Methods(http.MethodGet)
	}
	r.Handle("/metrics", metrics.Handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api").Subrouter()
	if rateLimit != nil {
		api.Use(rateLimit)
	}

	api.HandleFunc("/auth/register", h.Auth.Register).Methods(http.MethodPost)
	api.HandleFunc("/auth/login", h.Auth.Login).Methods(http.MethodPost)
	api.HandleFunc("/auth/logout", h.Auth.Logout).Methods(http.MethodPost)

	protected := api.PathPrefix("").Subrouter()
	protected.Use(requireAuth)

	protected.HandleFunc("/auth/profile", h.Auth.Profile).Methods(http.MethodGet)

	protected.HandleFunc("/notes", h.Notes.Create).Methods(http.MethodPost)
	protected.HandleFunc("/notes", h.Notes.List).Methods(http.MethodGet)
	protected.HandleFunc("/notes/{id}", h.Notes.Get).Methods(http.MethodGet)
	protected.HandleFunc("/notes/{id}", h.Notes.Update).Methods(http.MethodPut)
	protected.HandleFunc("/notes/{id}", h.Notes.Delete).Methods(http.MethodDelete)

	protected.HandleFunc("/bookmarks", h.Bookmarks.Create).Methods(http.MethodPost)
	protected.HandleFunc("/bookmarks", h.Bookmarks.List).Methods(http.MethodGet)
	protected.HandleFunc("/bookmarks/{id}", h.Bookmarks.Get).Methods(http.MethodGet)
	protected.HandleFunc("/bookmarks/{id}", h.Bookmarks.Update).Methods(http.MethodPut)
	protected.HandleFunc("/bookmarks/{id}", h.Bookmarks.Delete).Methods(http.MethodDelete)

	if h.WebSocket != nil {
		protected.HandleFunc("/ws", h.WebSocket.HandleConnection).Methods(http.MethodGet)
	}

	return r
}
