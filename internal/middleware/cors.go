package middleware

import (
	"net/http"

	"github.com/go-chi/cors"
)

// CORS answers cross-origin requests from allowed host pages. allow may be
// nil to admit any origin.
func CORS(allow func(origin string) bool) func(http.Handler) http.Handler {
	if allow == nil {
		allow = func(string) bool { return true }
	}
	return cors.Handler(cors.Options{
		AllowOriginFunc: func(_ *http.Request, origin string) bool {
			return allow(origin)
		},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		MaxAge:         600,
	})
}
