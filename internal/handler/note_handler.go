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

type NoteHandler struct {
	service *service.NoteService
	log     logrus.FieldLogger
}

func NewNoteHandler(service *service.NoteService, log logrus.FieldLogger) *NoteHandler {
	return &NoteHandler{
		service: service,
		log:     log,
	}
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.NoteRequest
	if err := decodeBody(r, domain.NoteRules, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	note, err := h.service.Create(r.Context(), &req, middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Created(w, note, "Note created successfully")
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	filters := listFilters(r.URL.Query(), "title")

	notes, err := h.service.GetAll(r.Context(), middleware.GetUserID(r), filters)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, notes, "All notes fetched")
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	note, err := h.service.GetByID(r.Context(), mux.Vars(r)["id"], middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, note, "Note fetched successfully")
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req domain.NoteRequest
	if err := decodeBody(r, domain.NoteRules, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	note, err := h.service.UpdateByID(r.Context(), mux.Vars(r)["id"], &req, middleware.GetUserID(r))
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, note, "Note updated")
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if _, err := h.service.DeleteByID(r.Context(), mux.Vars(r)["id"], middleware.GetUserID(r)); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, nil, "Note deleted")
}
