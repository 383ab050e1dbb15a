// Package gate decides which group of screens is reachable for a given
// session status and keeps that decision in step with the session.
package gate

import (
	"errors"
	"sync"

	"github.com/dmitrijs2005/adheretrack/internal/client/models"
)

// Group is a set of screens reachable together.
type Group int

const (
	// GroupPlaceholder: nothing route-dependent is shown yet.
	GroupPlaceholder Group = iota
	// GroupPublic: sign-in and sign-up.
	GroupPublic
	// GroupProtected: the application behind the session.
	GroupProtected
)

func (g Group) String() string {
	switch g {
	case GroupPublic:
		return "public"
	case GroupProtected:
		return "protected"
	default:
		return "placeholder"
	}
}

var (
	ErrNilSource = errors.New("gate: nil session source")
	ErrNilRouter = errors.New("gate: nil router")
)

// Decide maps a session status to the reachable group. Unknown statuses
// fall back to the placeholder.
func Decide(status models.Status) Group {
	switch status {
	case models.StatusAuthenticated:
		return GroupProtected
	case models.StatusUnauthenticated:
		return GroupPublic
	default:
		return GroupPlaceholder
	}
}

// Source is an observable session, implemented by services.SessionManager.
type Source interface {
	Subscribe(fn func(models.Session)) (unsubscribe func())
}

// Router switches the visible screen group.
type Router interface {
	Route(group Group)
}

// RouterFunc adapts a function to Router.
type RouterFunc func(group Group)

func (f RouterFunc) Route(group Group) { f(group) }

// Gate tracks the session and routes whenever the decision changes.
type Gate struct {
	router Router

	mu          sync.RWMutex
	current     Group
	routed      bool
	unsubscribe func()
}

// New subscribes to source. The router is called synchronously with the
// initial decision before New returns.
func New(source Source, router Router) (*Gate, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	if router == nil {
		return nil, ErrNilRouter
	}

	g := &Gate{router: router}
	unsubscribe := source.Subscribe(g.observe)

	g.mu.Lock()
	g.unsubscribe = unsubscribe
	g.mu.Unlock()

	return g, nil
}

func (g *Gate) observe(s models.Session) {
	next := Decide(s.Status)

	g.mu.Lock()
	if g.routed && next == g.current {
		g.mu.Unlock()
		return
	}
	g.current = next
	g.routed = true
	g.mu.Unlock()

	g.router.Route(next)
}

// Current returns the group decided for the latest observed session.
func (g *Gate) Current() Group {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.current
}

// CanReach reports whether group is reachable right now.
func (g *Gate) CanReach(group Group) bool {
	return g.Current() == group
}

// Close stops observing the session.
func (g *Gate) Close() {
	g.mu.Lock()
	unsubscribe := g.unsubscribe
	g.unsubscribe = nil
	g.mu.Unlock()

	if unsubscribe != nil {
		unsubscribe()
	}
}
