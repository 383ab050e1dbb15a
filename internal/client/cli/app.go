package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/dmitrijs2005/adheretrack/internal/client/client"
	"github.com/dmitrijs2005/adheretrack/internal/client/config"
	"github.com/dmitrijs2005/adheretrack/internal/client/gate"
	"github.com/dmitrijs2005/adheretrack/internal/client/models"
	"github.com/dmitrijs2005/adheretrack/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/adheretrack/internal/client/services"
	"github.com/dmitrijs2005/adheretrack/internal/client/tokenstore"
	"github.com/dmitrijs2005/adheretrack/internal/logging"
)

// sessionService is the part of services.SessionManager the CLI drives.
type sessionService interface {
	Session() models.Session
	Restore(ctx context.Context) models.Status
	SignIn(ctx context.Context, email, password string) error
	SignUp(ctx context.Context, name, email, password string) error
	SignOut(ctx context.Context) error
}

// userAPI is a protected backend call made on behalf of the session.
type userAPI interface {
	CurrentUser(ctx context.Context) (*models.User, error)
}

type App struct {
	config  *config.Config
	logger  logging.Logger
	db      *sql.DB
	session sessionService
	gate    *gate.Gate
	api     userAPI
	reader  *bufio.Reader
}

// NewApp opens the session database, builds the backend client and the
// session manager, and attaches the access gate. The session stays in the
// Loading state until Run restores it.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewTextLogger(os.Stderr, c.LogLevel)

	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		logger.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	backend, err := client.NewHTTPClient(c.BackendURL, nil)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	store := tokenstore.NewRepositoryStore(metadata.NewSQLiteRepository(db))

	m, err := services.NewSessionManager(backend, store, logger, services.WithTimeout(c.RequestTimeout))
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := &App{
		config:  c,
		logger:  logger,
		db:      db,
		session: m,
		api:     client.NewProtectedAPI(c.BackendURL, m, m.HandleUnauthenticatedToken, c.RequestTimeout),
		reader:  bufio.NewReader(os.Stdin),
	}

	g, err := gate.New(m, gate.RouterFunc(a.onRoute))
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	a.gate = g

	return a, nil
}

// Run restores the session and blocks in the REPL until the user exits.
func (a *App) Run(ctx context.Context) {
	defer a.Close()

	status := a.session.Restore(ctx)
	a.logger.Debug(ctx, "session resolved", "status", status.String())

	a.Root(ctx)
}

// Close detaches the gate and closes the session database.
func (a *App) Close() {
	if a.gate != nil {
		a.gate.Close()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error(context.Background(), "error closing database", "error", err)
		}
	}
}

// group is the screen group the gate currently allows.
func (a *App) group() gate.Group {
	if a.gate == nil {
		return gate.GroupPlaceholder
	}
	return a.gate.Current()
}

// onRoute announces screen group switches made by the gate.
func (a *App) onRoute(g gate.Group) {
	switch g {
	case gate.GroupProtected:
		s := a.session.Session()
		if s.User != nil && s.User.Email != "" {
			printlnFn(fmt.Sprintf("Signed in as %s", s.User.Email))
		} else {
			printlnFn("Signed in")
		}
	case gate.GroupPublic:
		printlnFn("Not signed in. Type 'login' or 'register'.")
	}
}

// getStatus renders the prompt suffix: the signed-in email, if any.
func (a *App) getStatus() string {
	if a.session == nil {
		return ""
	}
	s := a.session.Session()
	switch {
	case s.Status == models.StatusLoading:
		return "(loading)"
	case s.Authenticated() && s.User != nil && s.User.Email != "":
		return fmt.Sprintf("(%s)", s.User.Email)
	default:
		return ""
	}
}

// Root prints the banner and runs the REPL on the App's input.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to AdhereTrack (type 'help' for commands)")
	runREPL(ctx, a, a.getStatus, bufio.NewScanner(a.reader))
}
