package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/dmitrijs2005/adheretrack/internal/common"
	"github.com/dmitrijs2005/adheretrack/internal/logging"
	"github.com/dmitrijs2005/adheretrack/internal/server/users"
)

const maxBodyBytes = 1 << 20

type handler struct {
	users  UserService
	logger logging.Logger
}

type credentialsRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        userResponse `json:"user"`
}

func toUserResponse(u *users.User) userResponse {
	return userResponse{ID: u.ID, Name: u.Name, Email: u.Email}
}

// register creates an account: 201 with the user, 400 for a bad body or
// fields, 409 for a taken email.
func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	h.logger.Info(r.Context(), "Registration request")

	u, err := h.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorAlreadyExists):
			http.Error(w, "email already registered", http.StatusConflict)
		case errors.Is(err, common.ErrorValidation):
			http.Error(w, "email and password are required", http.StatusBadRequest)
		default:
			h.logger.Error(r.Context(), "registration failed", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	h.logger.Info(r.Context(), "Registered", "user_id", u.ID)
	writeJSON(w, http.StatusCreated, toUserResponse(u))
}

// login issues an access token: 200 with token and user, 401 for bad
// credentials.
func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !h.decode(w, r, &req) {
		return
	}

	token, u, err := h.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}
		h.logger.Error(r.Context(), "login failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{AccessToken: token, User: toUserResponse(u)})
}

// validate resolves the bearer token: 200 with the user, 401 when the
// token is missing, malformed, expired or unknown.
func (h *handler) validate(w http.ResponseWriter, r *http.Request) {
	token, ok := bearerToken(r)
	if !ok {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	u, err := h.users.Validate(r.Context(), token)
	if err != nil {
		if errors.Is(err, common.ErrInvalidToken) || errors.Is(err, common.ErrTokenExpired) {
			http.Error(w, "invalid token", http.StatusUnauthorized)
			return
		}
		h.logger.Error(r.Context(), "token validation failed", "error", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, toUserResponse(u))
}

func (h *handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return false
	}
	return true
}

func bearerToken(r *http.Request) (string, bool) {
	v := r.Header.Get(common.AuthorizationHeaderName)
	if !strings.HasPrefix(v, common.BearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(v, common.BearerPrefix))
	return token, token != ""
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
