package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORSMiddleware admits the front-end origins with credentials so the
// session cookie travels on cross-origin calls.
func CORSMiddleware(origins []string) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           3600,
	})
}
