package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrijs2005/adheretrack/internal/client/models"
	"github.com/dmitrijs2005/adheretrack/internal/common"
	"github.com/google/uuid"
)

const (
	loginPath    = "/auth/login"
	registerPath = "/auth/register"
	validatePath = "/auth/validate"

	// failure bodies are drained but never interpreted
	maxDrainBytes = 64 << 10
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        *models.User `json:"user"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HTTPClient talks to the identity backend over HTTP/JSON.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient validates baseURL and returns a client. A nil httpClient
// means http.DefaultClient; timeouts are taken from the request context.
func NewHTTPClient(baseURL string, httpClient *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid backend url %q: scheme must be http or https", baseURL)
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), httpClient: httpClient}, nil
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.LoginResult, error) {
	resp, err := c.do(ctx, http.MethodPost, loginPath, "", loginRequest{Email: email, Password: password})
	if err != nil {
		return nil, err
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		return nil, fmt.Errorf("%w: status %d", ErrInvalidCredentials, resp.StatusCode)
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: decode login response: %v", ErrNetwork, err)
	}
	if body.AccessToken == "" {
		return nil, fmt.Errorf("%w: login response without token", ErrNetwork)
	}
	if body.User == nil {
		body.User = &models.User{}
	}

	return &models.LoginResult{Token: body.AccessToken, User: body.User}, nil
}

func (c *HTTPClient) Register(ctx context.Context, name, email, password string) error {
	resp, err := c.do(ctx, http.MethodPost, registerPath, "", registerRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return err
	}
	defer drain(resp)

	if !isSuccess(resp.StatusCode) {
		return fmt.Errorf("%w: status %d", ErrRegistrationFailed, resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) Validate(ctx context.Context, token string) (*models.User, error) {
	resp, err := c.do(ctx, http.MethodGet, validatePath, token, nil)
	if err != nil {
		return nil, err
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

// do sends a JSON request. Any transport failure, including context
// cancellation and deadlines, is reported as ErrNetwork.
func (c *HTTPClient) do(ctx context.Context, method, path, token string, payload any) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set(common.RequestIDHeaderName, uuid.NewString())
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, mapTransportError(err)
	}
	return resp, nil
}

func mapTransportError(err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: request timed out: %v", ErrNetwork, err)
	case errors.Is(err, context.Canceled):
		return fmt.Errorf("%w: request canceled: %v", ErrNetwork, err)
	default:
		return fmt.Errorf("%w: %v", ErrNetwork, err)
	}
}

func isSuccess(code int) bool {
	return code >= 200 && code < 300
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
	_ = resp.Body.Close()
}
