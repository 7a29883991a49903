package api

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

type contextKey string

const userIdKey contextKey = "user_id"

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func newResponseWriterWrapper(w http.ResponseWriter) *responseWriterWrapper {
	return &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
}

func (w *responseWriterWrapper) WriteHeader(code int) {
	w.statusCode = code
	w.ResponseWriter.WriteHeader(code)
}

func (a *Api) LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := newResponseWriterWrapper(w)

		next.ServeHTTP(ww, r)

		duration := time.Since(start)

		a.logger.Info(
			"request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.String()),
			slog.Int("status", ww.statusCode),
			slog.String("duration", duration.String()),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("user_agent", r.UserAgent()),
		)
	})
}

// RequireUser trusts the authenticating gateway in front of this
// service to put the caller's id in X-User-ID.
func (a *Api) RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-User-ID")

		if id == "" {
			respondWithError(w, http.StatusUnauthorized, fmt.Errorf("missing user id"))
			return
		}

		if _, err := uuid.Parse(id); err != nil {
			respondWithError(w, http.StatusUnauthorized, fmt.Errorf("invalid user id"))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIdKey, id)))
	})
}

func requesterId(r *http.Request) string {
	id, _ := r.Context().Value(userIdKey).(string)
	return id
}
