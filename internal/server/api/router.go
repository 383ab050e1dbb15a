// Package api exposes the development identity backend over HTTP/JSON.
package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/dmitrijs2005/adheretrack/internal/common"
	"github.com/dmitrijs2005/adheretrack/internal/logging"
	"github.com/dmitrijs2005/adheretrack/internal/server/users"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// UserService is the account surface the handlers need. *users.Service
// satisfies it.
type UserService interface {
	Register(ctx context.Context, name, email, password string) (*users.User, error)
	Login(ctx context.Context, email, password string) (string, *users.User, error)
	Validate(ctx context.Context, token string) (*users.User, error)
}

func NewRouter(us UserService, logger logging.Logger) *mux.Router {
	h := &handler{users: us, logger: logger}
	m := newMetrics()

	r := mux.NewRouter()
	r.Use(h.requestID, m.instrument)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if _, err := fmt.Fprintln(w, "OK"); err != nil {
			logger.Warn(r.Context(), "health write failed", "error", err)
		}
	}).Methods("GET")
	r.HandleFunc("/auth/register", h.register).Methods("POST")
	r.HandleFunc("/auth/login", h.login).Methods("POST")
	r.HandleFunc("/auth/validate", h.validate).Methods("GET")
	r.Handle("/metrics", m.handler()).Methods("GET")

	return r
}

// requestID echoes the caller's X-Request-ID, or assigns one, and logs the
// request under it.
func (h *handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(common.RequestIDHeaderName)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(common.RequestIDHeaderName, id)

		h.logger.Debug(r.Context(), "request", "method", r.Method, "path", r.URL.Path, "request_id", id)
		next.ServeHTTP(w, r)
	})
}
