// Package services contains application services of the session client.
// This file defines SessionManager: the owner of the process-wide session,
// its state machine and the only writer of the persisted token.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/dmitrijs2005/adheretrack/internal/client/client"
	"github.com/dmitrijs2005/adheretrack/internal/client/models"
	"github.com/dmitrijs2005/adheretrack/internal/client/tokenstore"
	"github.com/dmitrijs2005/adheretrack/internal/logging"
)

// DefaultTimeout bounds every backend call made by the manager.
const DefaultTimeout = 10 * time.Second

var (
	// ErrMissingDependency is returned by NewSessionManager for a nil client or store.
	ErrMissingDependency = errors.New("session manager: missing dependency")
	// ErrSuperseded is returned by SignIn when a sign-out completed while the
	// login request was in flight; the login result is discarded.
	ErrSuperseded = errors.New("sign-in superseded by sign-out")
)

// Option customises a SessionManager.
type Option func(*SessionManager)

// WithTimeout sets the per-call backend timeout. Zero or negative disables it.
func WithTimeout(d time.Duration) Option {
	return func(m *SessionManager) { m.timeout = d }
}

type listener struct {
	id uint64
	fn func(models.Session)
}

type notification struct {
	version uint64
	session models.Session
	changed bool
}

// SessionManager drives the session through Loading, Authenticated and
// Unauthenticated. It is safe for concurrent use; concurrent sign-ins are
// not coalesced and the last one to commit wins.
type SessionManager struct {
	client  client.Client
	store   tokenstore.Store
	logger  logging.Logger
	timeout time.Duration

	// commitMu makes a token store write and the matching state change
	// atomic with respect to other commits
	commitMu sync.Mutex

	mu        sync.Mutex
	session   models.Session
	version   uint64
	commits   uint64
	signOuts  uint64
	listeners []listener
	nextID    uint64

	notifyMu  sync.Mutex
	delivered uint64
}

// NewSessionManager returns a manager in the Loading state. Call Restore
// once at startup to resolve it.
func NewSessionManager(c client.Client, store tokenstore.Store, logger logging.Logger, opts ...Option) (*SessionManager, error) {
	if c == nil || store == nil {
		return nil, ErrMissingDependency
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	m := &SessionManager{
		client:  c,
		store:   store,
		logger:  logger.With("component", "session"),
		timeout: DefaultTimeout,
		session: models.Session{Status: models.StatusLoading},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Session returns a snapshot of the current session.
func (m *SessionManager) Session() models.Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session
}

// Status returns the current status.
func (m *SessionManager) Status() models.Status {
	return m.Session().Status
}

// Token returns the current token, "" unless authenticated.
func (m *SessionManager) Token() string {
	return m.Session().Token
}

// Restore resolves the Loading state from the persisted token. A missing
// token resolves to Unauthenticated without contacting the backend; a token
// that cannot be confirmed valid is cleared (fail-closed). If another
// lifecycle step commits while Restore is in flight, Restore's outcome is
// dropped.
func (m *SessionManager) Restore(ctx context.Context) models.Status {
	start := m.commitCount()

	token, ok, err := m.store.Get(ctx)
	if err != nil {
		m.logger.Error(ctx, "failed to read stored token", "error", err)
		return m.resolve(ctx, start, models.Session{Status: models.StatusUnauthenticated}, false)
	}
	if !ok {
		m.logger.Info(ctx, "no stored session")
		return m.resolve(ctx, start, models.Session{Status: models.StatusUnauthenticated}, false)
	}

	user, err := m.validate(ctx, token)
	if err != nil {
		m.logger.Warn(ctx, "stored session could not be confirmed, signing out", "error", err)
		return m.resolve(ctx, start, models.Session{Status: models.StatusUnauthenticated}, true)
	}

	m.logger.Info(ctx, "session restored", "user_id", user.ID)
	return m.resolve(ctx, start, models.Session{Token: token, User: user, Status: models.StatusAuthenticated}, false)
}

func (m *SessionManager) resolve(ctx context.Context, start uint64, next models.Session, clearStore bool) models.Status {
	m.commitMu.Lock()
	if m.commitCount() != start {
		m.commitMu.Unlock()
		m.logger.Debug(ctx, "session resolved concurrently, restore result dropped")
		return m.Status()
	}
	if clearStore {
		if err := m.store.Clear(context.WithoutCancel(ctx)); err != nil {
			m.logger.Error(ctx, "failed to clear stored token", "error", err)
		}
	}
	n := m.commit(next, false)
	m.commitMu.Unlock()

	m.publish(n)
	return next.Status
}

// SignIn logs in and, on success, persists the token and becomes
// Authenticated. On failure the session and the stored token are left as
// they were and the error is returned: client.ErrInvalidCredentials,
// client.ErrNetwork, tokenstore.ErrStorage or ErrSuperseded.
func (m *SessionManager) SignIn(ctx context.Context, email, password string) error {
	signOuts := m.signOutCount()

	res, err := m.login(ctx, email, password)
	if err != nil {
		m.logger.Info(ctx, "sign-in failed", "error", err)
		return err
	}
	if res.User == nil {
		res.User = &models.User{}
	}

	m.commitMu.Lock()
	if m.signOutCount() != signOuts {
		m.commitMu.Unlock()
		m.logger.Warn(ctx, "sign-in discarded, signed out while it was in flight")
		return ErrSuperseded
	}
	if err := m.store.Set(ctx, res.Token); err != nil {
		m.commitMu.Unlock()
		m.logger.Error(ctx, "failed to persist token", "error", err)
		return err
	}
	n := m.commit(models.Session{Token: res.Token, User: res.User, Status: models.StatusAuthenticated}, false)
	m.commitMu.Unlock()

	m.publish(n)
	m.logger.Info(ctx, "signed in", "user_id", res.User.ID)
	return nil
}

// SignUp registers the account and then signs in with the same
// credentials. Registration alone does not establish a session.
func (m *SessionManager) SignUp(ctx context.Context, name, email, password string) error {
	if err := m.register(ctx, name, email, password); err != nil {
		m.logger.Info(ctx, "sign-up failed", "error", err)
		return err
	}
	m.logger.Info(ctx, "registered, signing in")
	return m.SignIn(ctx, email, password)
}

// SignOut clears the stored token and becomes Unauthenticated. The
// in-memory transition always happens; a storage failure is logged and
// returned.
func (m *SessionManager) SignOut(ctx context.Context) error {
	_, err := m.signOut(ctx, "")
	return err
}

// signOut performs SignOut. A non-empty token restricts it to the session
// still holding that token; the check and the transition are one commit.
func (m *SessionManager) signOut(ctx context.Context, token string) (bool, error) {
	m.commitMu.Lock()
	if token != "" && m.Token() != token {
		m.commitMu.Unlock()
		return false, nil
	}
	err := m.store.Clear(context.WithoutCancel(ctx))
	if err != nil {
		m.logger.Error(ctx, "failed to clear stored token", "error", err)
	}
	n := m.commit(models.Session{Status: models.StatusUnauthenticated}, true)
	m.commitMu.Unlock()

	m.publish(n)
	if n.changed {
		m.logger.Info(ctx, "signed out")
	}
	return true, err
}

// HandleUnauthenticated is the entry point for a backend that rejected the
// session token on some protected call. It goes through SignOut; the
// storage error is already logged there and nobody waits on this call.
func (m *SessionManager) HandleUnauthenticated(ctx context.Context) {
	m.logger.Warn(ctx, "backend rejected session token")
	if err := m.SignOut(ctx); err != nil {
		m.logger.Debug(ctx, "sign-out after rejection left a stored token", "error", err)
	}
}

// HandleUnauthenticatedToken is HandleUnauthenticated for a rejection of a
// specific token. It does nothing once the session has moved on to another
// token or signed out, so a late 401 cannot end a newer session.
func (m *SessionManager) HandleUnauthenticatedToken(ctx context.Context, token string) {
	if token == "" {
		return
	}
	done, err := m.signOut(ctx, token)
	if !done {
		m.logger.Debug(ctx, "ignoring rejection of a superseded token")
		return
	}
	m.logger.Warn(ctx, "backend rejected session token")
	if err != nil {
		m.logger.Debug(ctx, "sign-out after rejection left a stored token", "error", err)
	}
}

// Subscribe registers fn to observe the session. fn is called synchronously
// with the current snapshot before Subscribe returns and then after every
// change, in commit order; a snapshot older than one already delivered is
// never delivered. fn must not call SignIn, SignUp, SignOut, Restore or
// HandleUnauthenticated synchronously.
func (m *SessionManager) Subscribe(fn func(models.Session)) (unsubscribe func()) {
	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.listeners = append(m.listeners, listener{id: id, fn: fn})
	current := m.session
	m.mu.Unlock()

	fn(current)

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, l := range m.listeners {
			if l.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

// commit installs next as the current session. Callers hold commitMu.
func (m *SessionManager) commit(next models.Session, signOut bool) notification {
	if next.User != nil {
		u := *next.User
		next.User = &u
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.session
	m.session = next
	m.commits++
	if signOut {
		m.signOuts++
	}

	if sameSession(prev, next) {
		return notification{}
	}
	m.version++
	return notification{version: m.version, session: next, changed: true}
}

func (m *SessionManager) publish(n notification) {
	if !n.changed {
		return
	}

	m.notifyMu.Lock()
	defer m.notifyMu.Unlock()

	if n.version <= m.delivered {
		return
	}
	m.delivered = n.version

	m.mu.Lock()
	ls := make([]listener, len(m.listeners))
	copy(ls, m.listeners)
	m.mu.Unlock()

	for _, l := range ls {
		l.fn(n.session)
	}
}

func (m *SessionManager) commitCount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commits
}

func (m *SessionManager) signOutCount() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.signOuts
}

func sameSession(a, b models.Session) bool {
	if a.Status != b.Status || a.Token != b.Token {
		return false
	}
	if a.User == nil || b.User == nil {
		return a.User == b.User
	}
	return *a.User == *b.User
}
