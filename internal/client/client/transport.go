package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/adheretrack/internal/client/models"
	"github.com/dmitrijs2005/adheretrack/internal/common"
	"github.com/google/uuid"
)

// TokenSource yields the current session token, or "" when there is none.
type TokenSource interface {
	Token() string
}

// AuthorizedTransport injects the bearer token into protected application
// requests. When the backend answers 401 to a request that carried a token,
// OnUnauthenticated is invoked with the request context and the rejected
// token, so the session can be torn down through its regular sign-out path
// if that token is still the current one.
type AuthorizedTransport struct {
	Base              http.RoundTripper
	Source            TokenSource
	OnUnauthenticated func(ctx context.Context, token string)
}

func (t *AuthorizedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	base := t.Base
	if base == nil {
		base = http.DefaultTransport
	}

	token := ""
	if t.Source != nil {
		token = t.Source.Token()
	}

	// RoundTrip must not modify the caller's request
	r := req.Clone(req.Context())
	if token != "" {
		r.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	if r.Header.Get(common.RequestIDHeaderName) == "" {
		r.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	}

	resp, err := base.RoundTrip(r)
	if err != nil {
		return nil, err
	}

	// a 401 for a token that has since been replaced says nothing about
	// the current session
	if resp.StatusCode == http.StatusUnauthorized && token != "" && t.OnUnauthenticated != nil &&
		t.Source.Token() == token {
		t.OnUnauthenticated(req.Context(), token)
	}
	return resp, nil
}

// ProtectedAPI performs application calls that require a session.
type ProtectedAPI struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewProtectedAPI builds a ProtectedAPI whose requests go through an
// AuthorizedTransport bound to source and onUnauthenticated. Each call is
// bounded by timeout; zero or negative disables the bound.
func NewProtectedAPI(baseURL string, source TokenSource, onUnauthenticated func(ctx context.Context, token string), timeout time.Duration) *ProtectedAPI {
	return &ProtectedAPI{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: timeout,
		httpClient: &http.Client{Transport: &AuthorizedTransport{
			Source:            source,
			OnUnauthenticated: onUnauthenticated,
		}},
	}
}

// CurrentUser fetches the identity bound to the current token.
func (p *ProtectedAPI) CurrentUser(ctx context.Context) (*models.User, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+validatePath, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("%w: status %d", ErrTokenInvalid, resp.StatusCode)
	}

	var user models.User
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%w: decode user: %v", ErrNetwork, err)
	}
	return &user, nil
}
