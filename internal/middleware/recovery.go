package middleware

import (
	"net/http"
	"runtime/debug"
	"strings"

	"github.com/freetools/toolsite/internal/models"
	"github.com/rs/zerolog/log"
)

const internalErrorPage = `<!doctype html><html><head><title>Something went wrong</title></head>` +
	`<body><h1>Something went wrong</h1><p>Please try again in a moment.</p><p><a href="/">Back to all tools</a></p></body></html>`

// Recovery turns a panic into a 500: JSON for API paths, a minimal HTML page
// for everything else.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().
					Interface("panic", rec).
					Str("stack", string(debug.Stack())).
					Str("request_id", GetRequestID(r.Context())).
					Str("path", r.URL.Path).
					Msg("panic recovered")

				if strings.HasPrefix(r.URL.Path, "/api/") {
					models.WriteError(w, http.StatusInternalServerError, "internal server error")
					return
				}
				w.Header().Set("Content-Type", "text/html; charset=utf-8")
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte(internalErrorPage))
			}
		}()
		next.ServeHTTP(w, r)
	})
}
