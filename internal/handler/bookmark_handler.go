package handler

import (
	"net/http"

	"note-bookmark-server/internal/domain"
	"note-bookmark-server/internal/middleware"
	"note-bookmark-server/internal/service"
	"note-bookmark-server/pkg/response"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
)

type BookmarkHandler struct {
	service *service.BookmarkService
	log     logrus.FieldLogger
}

func NewBookmarkHandler(service *service.BookmarkService, log logrus.FieldLogger) *BookmarkHandler {
	return &BookmarkHandler{
		service: service,
		log:     log,
	}
}

func (h *BookmarkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.BookmarkRequest
	if err := decodeBody(r, domain.BookmarkRules, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	bookmark, err := h.service.Create(r.Context(), &req, middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Created(w, bookmark, "Bookmark created successfully")
}

func (h *BookmarkHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r.URL.Query(), "title", "url")

	bookmarks, err := h.service.GetAll(r.Context(), middleware.GetUserID(r), filters)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, bookmarks, "All bookmarks fetched")
}

func (h *BookmarkHandler) Get(w http.ResponseWriter, r *http.Request) {
	bookmark, err := h.service.GetByID(r.Context(), mux.Vars(r)["id"], middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, bookmark, "Bookmark fetched")
}

func (h *BookmarkHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.BookmarkRequest
	if err := decodeBody(r, domain.BookmarkRules, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	bookmark, err := h.service.UpdateByID(r.Context(), mux.Vars(r)["id"], &req, middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, bookmark, "Bookmark updated")
}

func (h *BookmarkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.DeleteByID(r.Context(), mux.Vars(r)["id"], middleware.GetUserID(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, nil, "Bookmark deleted")
}
