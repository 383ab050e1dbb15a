package api_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/adheretrack/internal/client/client"
	"github.com/dmitrijs2005/adheretrack/internal/client/models"
	"github.com/dmitrijs2005/adheretrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/adheretrack/internal/client/services"
	"github.com/dmitrijs2005/adheretrack/internal/client/tokenstore"
	"github.com/dmitrijs2005/adheretrack/internal/logging"
	"github.com/dmitrijs2005/adheretrack/internal/server/api"
	"github.com/dmitrijs2005/adheretrack/internal/server/auth"
	"github.com/dmitrijs2005/adheretrack/internal/server/config"
	"github.com/dmitrijs2005/adheretrack/internal/server/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "e2e-secret"

type env struct {
	srv     *httptest.Server
	backend *client.HTTPClient
	store   *tokenstore.RepositoryStore
	dbPath  string
}

func newEnv(t *testing.T) *env {
	t.Helper()

	cfg := &config.Config{SecretKey: secret, AccessTokenValidityDuration: time.Hour}
	srv := httptest.NewServer(api.NewRouter(users.NewService(users.NewMemoryRepository(), cfg), logging.NewNopLogger()))
	t.Cleanup(srv.Close)

	backend, err := client.NewHTTPClient(srv.URL+"/", srv.Client())
	require.NoError(t, err)

	dbPath := filepath.Join(t.TempDir(), "session.db")
	return &env{srv: srv, backend: backend, store: openStore(t, dbPath), dbPath: dbPath}
}

func openStore(t *testing.T, path string) *tokenstore.RepositoryStore {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return tokenstore.NewRepositoryStore(metadata.NewSQLiteRepository(db))
}

func (e *env) manager(t *testing.T, store tokenstore.Store) *services.SessionManager {
	t.Helper()
	m, err := services.NewSessionManager(e.backend, store, logging.NewNopLogger(), services.WithTimeout(5*time.Second))
	require.NoError(t, err)
	return m
}

func TestSession_SignUpPersistsAndRestores(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	m := e.manager(t, e.store)
	require.Equal(t, models.StatusUnauthenticated, m.Restore(ctx))

	require.NoError(t, m.SignUp(ctx, "Ann", "ann@example.org", "pw"))
	s := m.Session()
	require.Equal(t, models.StatusAuthenticated, s.Status)
	require.NotNil(t, s.User)
	assert.Equal(t, "ann@example.org", s.User.Email)
	assert.Equal(t, "Ann", s.User.Name)

	// a fresh process on the same database file
	restarted := e.manager(t, openStore(t, e.dbPath))
	require.Equal(t, models.StatusAuthenticated, restarted.Restore(ctx))
	assert.Equal(t, s.Token, restarted.Token())
	assert.Equal(t, s.User.ID, restarted.Session().UserID())

	require.NoError(t, restarted.SignOut(ctx))
	_, ok, err := e.store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_WrongPasswordLeavesUnauthenticated(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	require.NoError(t, e.backend.Register(ctx, "Bob", "bob@example.org", "pw"))

	m := e.manager(t, e.store)
	m.Restore(ctx)

	err := m.SignIn(ctx, "bob@example.org", "nope")
	require.ErrorIs(t, err, client.ErrInvalidCredentials)
	assert.Equal(t, models.StatusUnauthenticated, m.Status())
}

func TestSession_DuplicateRegistration(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	require.NoError(t, e.backend.Register(ctx, "Bob", "bob@example.org", "pw"))

	m := e.manager(t, e.store)
	m.Restore(ctx)

	err := m.SignUp(ctx, "Bob2", "bob@example.org", "pw")
	require.ErrorIs(t, err, client.ErrRegistrationFailed)
	assert.Equal(t, models.StatusUnauthenticated, m.Status())
}

func TestSession_ExpiredStoredTokenFailsClosed(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	expired, err := auth.GenerateToken("someone", []byte(secret), -time.Minute)
	require.NoError(t, err)
	require.NoError(t, e.store.Set(ctx, expired))

	m := e.manager(t, e.store)
	require.Equal(t, models.StatusUnauthenticated, m.Restore(ctx))

	_, ok, err := e.store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "rejected token must be cleared")
}

func TestSession_BackendDownFailsClosed(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	require.NoError(t, e.store.Set(ctx, "whatever"))
	e.srv.Close()

	m := e.manager(t, e.store)
	require.Equal(t, models.StatusUnauthenticated, m.Restore(ctx))

	_, ok, err := e.store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_ProtectedCallRejectionSignsOut(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	m := e.manager(t, e.store)
	m.Restore(ctx)
	require.NoError(t, m.SignUp(ctx, "Cy", "cy@example.org", "pw"))

	protected := client.NewProtectedAPI(e.srv.URL, m, m.HandleUnauthenticatedToken, 5*time.Second)
	u, err := protected.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "cy@example.org", u.Email)

	// same backend after a secret rotation: the session token no longer verifies
	rotated := &config.Config{SecretKey: "rotated", AccessTokenValidityDuration: time.Hour}
	other := httptest.NewServer(api.NewRouter(users.NewService(users.NewMemoryRepository(), rotated), logging.NewNopLogger()))
	defer other.Close()

	rejected := client.NewProtectedAPI(other.URL, m, m.HandleUnauthenticatedToken, 5*time.Second)
	_, err = rejected.CurrentUser(ctx)
	require.ErrorIs(t, err, client.ErrTokenInvalid)
	assert.Equal(t, models.StatusUnauthenticated, m.Status())

	_, ok, err := e.store.Get(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSession_ForeignTokenRejectionKeepsSession(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	m := e.manager(t, e.store)
	m.Restore(ctx)
	require.NoError(t, m.SignUp(ctx, "Di", "di@example.org", "pw"))
	token := m.Token()

	forged, err := auth.GenerateToken("someone-else", []byte("rotated"), time.Hour)
	require.NoError(t, err)
	rejected := client.NewProtectedAPI(e.srv.URL, staticToken(forged), m.HandleUnauthenticatedToken, 5*time.Second)

	_, err = rejected.CurrentUser(ctx)
	require.ErrorIs(t, err, client.ErrTokenInvalid)
	assert.Equal(t, models.StatusAuthenticated, m.Status())
	assert.Equal(t, token, m.Token())
}

func TestSession_LateRejectionOfOldTokenKeepsNewSession(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	m := e.manager(t, e.store)
	m.Restore(ctx)
	require.NoError(t, m.SignUp(ctx, "Fa", "fa@example.org", "pw"))
	require.NoError(t, m.SignOut(ctx))
	require.NoError(t, m.SignUp(ctx, "Ed", "ed@example.org", "pw"))
	oldToken := m.Token()

	received := make(chan struct{})
	release := make(chan struct{})
	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(received)
		<-release
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer slow.Close()

	protected := client.NewProtectedAPI(slow.URL, m, m.HandleUnauthenticatedToken, 5*time.Second)
	done := make(chan error, 1)
	go func() {
		_, err := protected.CurrentUser(ctx)
		done <- err
	}()

	<-received
	require.NoError(t, m.SignOut(ctx))
	require.NoError(t, m.SignIn(ctx, "fa@example.org", "pw"))
	newToken := m.Token()
	require.NotEqual(t, oldToken, newToken)
	close(release)

	require.ErrorIs(t, <-done, client.ErrTokenInvalid)
	assert.Equal(t, models.StatusAuthenticated, m.Status())
	assert.Equal(t, newToken, m.Token())

	stored, ok, err := e.store.Get(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, newToken, stored)
}

type staticToken string

func (s staticToken) Token() string { return string(s) }
