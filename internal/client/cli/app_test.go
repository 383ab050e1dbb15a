package cli

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/adheretrack/internal/client/config"
	"github.com/dmitrijs2005/adheretrack/internal/client/gate"
	"github.com/dmitrijs2005/adheretrack/internal/client/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetStatus(t *testing.T) {
	tests := []struct {
		name    string
		session models.Session
		want    string
	}{
		{name: "loading", session: models.Session{Status: models.StatusLoading}, want: "(loading)"},
		{name: "signed out", session: models.Session{Status: models.StatusUnauthenticated}, want: ""},
		{
			name: "signed in",
			session: models.Session{
				Token:  "t",
				User:   &models.User{ID: "1", Email: "alice@example.org"},
				Status: models.StatusAuthenticated,
			},
			want: "(alice@example.org)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &App{session: &fakeSession{session: tt.session}}
			assert.Equal(t, tt.want, a.getStatus())
		})
	}
}

func TestGetStatus_NoSession(t *testing.T) {
	assert.Equal(t, "", (&App{}).getStatus())
}

func TestGroup_NoGate(t *testing.T) {
	assert.Equal(t, gate.GroupPlaceholder, (&App{}).group())
}

func TestOnRoute(t *testing.T) {
	out := capturePrintln(t)
	a := &App{session: &fakeSession{session: models.Session{
		Token:  "t",
		User:   &models.User{ID: "1", Email: "alice@example.org"},
		Status: models.StatusAuthenticated,
	}}}

	a.onRoute(gate.GroupPlaceholder)
	a.onRoute(gate.GroupProtected)
	a.onRoute(gate.GroupPublic)

	assert.Equal(t, []string{
		"Signed in as alice@example.org",
		"Not signed in. Type 'login' or 'register'.",
	}, *out)
}

func TestNewApp_RestoresToPublicWithoutStoredToken(t *testing.T) {
	out := capturePrintln(t)

	cfg := &config.Config{
		BackendURL:     "http://127.0.0.1:1",
		RequestTimeout: time.Second,
		DatabasePath:   filepath.Join(t.TempDir(), "session.db"),
		LogLevel:       "error",
	}

	a, err := NewApp(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(a.Close)

	assert.Equal(t, gate.GroupPlaceholder, a.group())

	status := a.session.Restore(context.Background())
	assert.Equal(t, models.StatusUnauthenticated, status)
	assert.Equal(t, gate.GroupPublic, a.group())
	assert.Contains(t, *out, "Not signed in. Type 'login' or 'register'.")
}

func TestNewApp_InvalidBackendURL(t *testing.T) {
	cfg := &config.Config{
		BackendURL:   "ftp://example.org",
		DatabasePath: filepath.Join(t.TempDir(), "session.db"),
		LogLevel:     "error",
	}

	_, err := NewApp(context.Background(), cfg)
	require.Error(t, err)
}
