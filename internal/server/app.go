// Package server initializes and runs the development identity backend.
// It wires the user service to the HTTP router and handles graceful
// shutdown on SIGINT, SIGTERM and SIGQUIT.
package server

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/dmitrijs2005/adheretrack/internal/logging"
	"github.com/dmitrijs2005/adheretrack/internal/server/api"
	"github.com/dmitrijs2005/adheretrack/internal/server/config"
	"github.com/dmitrijs2005/adheretrack/internal/server/users"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config      *config.Config
	logger      logging.Logger
	userService *users.Service
}

func NewApp(c *config.Config) (*App, error) {

	logger := logging.NewJSONLogger(os.Stdout, c.LogLevel)

	us := users.NewService(users.NewMemoryRepository(), c)

	return &App{config: c, logger: logger, userService: us}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// newHTTPServer builds the listener configuration for the router.
func (app *App) newHTTPServer() *http.Server {
	return &http.Server{
		Addr:              app.config.Addr,
		Handler:           api.NewRouter(app.userService, app.logger),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// serve runs srv until ctx is done, then shuts it down gracefully.
func (app *App) serve(ctx context.Context, srv *http.Server, cancelFunc context.CancelFunc) {
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.logger.Error(ctx, "shutdown failed", "error", err)
		}
	}()

	app.logger.Info(ctx, "HTTP server listening", "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		app.logger.Error(ctx, err.Error())
	}
	cancelFunc()

	wg.Wait()
}

func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	app.serve(ctx, app.newHTTPServer(), cancelFunc)

	app.logger.Info(ctx, "Stopped")
}
