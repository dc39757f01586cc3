package handler

import (
	"errors"
	"net/http"

	"note-bookmark-server/internal/service"
	"note-bookmark-server/pkg/response"
	"note-bookmark-server/pkg/validate"

	"github.com/sirupsen/logrus"
)

// writeError maps service error kinds onto status codes. Anything it does
// not recognise is logged and answered with 500.
func writeError(w http.ResponseWriter, r *http.Request, log logrus.FieldLogger, err error) {
	var verr *validate.Error
	switch {
	case errors.As(err, &verr):
		response.BadRequest(w, verr.Message)
	case errors.Is(err, service.ErrDuplicateUser):
		response.Conflict(w, "User already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(w, "Invalid email or password")
	case errors.Is(err, service.ErrNoteNotFound):
		response.NotFound(w, "Note not found or unauthorized")
	case errors.Is(err, service.ErrBookmarkNotFound):
		response.NotFound(w, "Not authorized or bookmark not found")
	case errors.Is(err, service.ErrUserNotFound):
		response.NotFound(w, "User not found")
	default:
		log.WithError(err).WithFields(logrus.Fields{
			"method": r.Method,
			"path":   r.URL.Path,
		}).Error("request failed")
		response.InternalError(w, err.Error())
	}
}
