// Package middleware holds the HTTP middleware shared by modules: CORS,
// request logging, panic recovery and OIDC bearer authentication.
package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/JaimeStill/medbrief/pkg/handlers"
)

// Middleware wraps a handler.
type Middleware func(http.Handler) http.Handler

// Stack is an ordered middleware chain. The first middleware added is the
// outermost.
type Stack []Middleware

// Use appends mw to the chain.
func (s *Stack) Use(mw Middleware) {
	*s = append(*s, mw)
}

// Then wraps h with every middleware in s.
func (s Stack) Then(h http.Handler) http.Handler {
	for i := len(s) - 1; i >= 0; i-- {
		h = s[i](h)
	}
	return h
}

// Recover converts a handler panic into a 500 error envelope. Panics with
// http.ErrAbortHandler are re-raised so the server aborts the response.
func Recover(logger *slog.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				logger.ErrorContext(r.Context(), "handler panic",
					"method", r.Method,
					"uri", r.URL.RequestURI(),
					"panic", rec,
					"stack", string(debug.Stack()),
				)
				handlers.RespondJSON(w, http.StatusInternalServerError, handlers.ErrorResponse{
					Error: http.StatusText(http.StatusInternalServerError),
				})
			}()

			next.ServeHTTP(w, r)
		})
	}
}
