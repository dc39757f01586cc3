package middleware

import (
	"context"
	"errors"
	"net/http"

	"note-bookmark-server/internal/domain"
	"note-bookmark-server/internal/service"
	"note-bookmark-server/pkg/jwt"
	"note-bookmark-server/pkg/response"

	"github.com/sirupsen/logrus"
)

type contextKey string

const (
	UserKey        contextKey = "user"
	SessionCookie             = "token"
	requestInfoKey contextKey = "requestInfo"
)

// Authenticator resolves a session token to a stored user.
type Authenticator interface {
	VerifyToken(token string) (*jwt.Claims, error)
	GetUserByID(ctx context.Context, id string) (*domain.User, error)
}

func AuthMiddleware(auth Authenticator, log logrus.FieldLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			cookie, err := r.Cookie(SessionCookie)
			if err != nil || cookie.Value == "" {
				response.Unauthorized(w, "No token provided")
				return
			}

			claims, err := auth.VerifyToken(cookie.Value)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			user, err := auth.GetUserByID(r.Context(), claims.UserID)
			if err != nil {
				if errors.Is(err, service.ErrUserNotFound) {
					response.NotFound(w, "User not found")
					return
				}
				log.WithError(err).WithField("user_id", claims.UserID).Error("failed to load session user")
				response.InternalError(w, err.Error())
				return
			}

			if info := requestInfoFrom(r.Context()); info != nil {
				info.userID = user.ID
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

func WithUser(ctx context.Context, user *domain.User) context.Context {
	return context.WithValue(ctx, UserKey, user)
}

func UserFromContext(ctx context.Context) (*domain.User, bool) {
	user, ok := ctx.Value(UserKey).(*domain.User)
	return user, ok && user != nil
}

func GetUserID(r *http.Request) string {
	user, ok := UserFromContext(r.Context())
	if !ok {
		return ""
	}
	return user.ID
}
