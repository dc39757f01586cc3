package handler

import (
	"net/http"
	"time"

	"note-bookmark-server/internal/domain"
	"note-bookmark-server/internal/middleware"
	"note-bookmark-server/internal/service"
	"note-bookmark-server/pkg/response"

	"github.com/sirupsen/logrus"
)

type AuthHandler struct {
	authService  *service.AuthService
	secureCookie bool
	log          logrus.FieldLogger
}

func NewAuthHandler(authService *service.AuthService, secureCookie bool, log logrus.FieldLogger) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		secureCookie: secureCookie,
		log:          log,
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeBody(r, domain.RegisterRules, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	user, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Created(w, &domain.AuthResponse{User: user}, "User registered successfully")
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeBody(r, domain.LoginRules, &req); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		writeError(w, r, h.log, err)
		return
	}

	if err := h.startSession(w, user.ID); err != nil {
		writeError(w, r, h.log, err)
		return
	}

	response.Success(w, &domain.AuthResponse{User: user}, "Logged in successfully")
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secureCookie,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
	})

	response.Success(w, nil, "Logged out successfully")
}

func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "No token provided")
		return
	}

	response.Success(w, &domain.AuthResponse{User: user}, "User profile retrieved successfully")
}

func (h *AuthHandler) startSession(w http.ResponseWriter, userID string) error {
	token, err := h.authService.IssueToken(userID)
	if err != nil {
		return err
	}

	ttl := h.authService.TokenTTL()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteStrictMode,
		Secure:   h.secureCookie,
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
	})
	return nil
}
