package app

import (
	"context"

	"log/slog"

	"github.com/souqops/analytics-manager/config"
	httpapi "github.com/souqops/analytics-manager/internal/api/http"
	"github.com/souqops/analytics-manager/internal/analytics"
	analyticssrv "github.com/souqops/analytics-manager/internal/apisrv/analytics"
	"github.com/souqops/analytics-manager/internal/apisrv/tracking"
	"github.com/souqops/analytics-manager/internal/dependency"
	"github.com/souqops/analytics-manager/internal/ratelimit"
	"github.com/souqops/analytics-manager/internal/store"
)

// App is the main application
type App struct {
	hs   *httpapi.Server
	db   dependency.Repository
	c    *config.Config
	done chan struct{}
}

// New returns a new instance of App
func New(c *config.Config) *App {
	return &App{
		c:    c,
		done: make(chan struct{}),
	}
}

// Start starts the app
func (a *App) Start(ctx context.Context) error {
	var err error
	slog.Default().InfoContext(ctx, "starting analytics manager")

	a.db, err = store.New(ctx, a.c.DB)
	if err != nil {
		slog.Default().ErrorContext(ctx, "couldn't connect to mysql",
			slog.String("err", err.Error()),
		)
		return err
	}

	eng := analytics.New(a.db)
	analyticsS := analyticssrv.New(&a.c.Analytics, eng)
	trackingS := tracking.New(a.db, ratelimit.NewTrackingLimiter())

	a.hs = httpapi.New(&a.c.HTTP)
	if err = a.hs.Start(ctx, a.db, analyticsS, trackingS); err != nil {
		slog.Default().ErrorContext(ctx, "cannot start http server",
			slog.String("err", err.Error()),
		)
		return err
	}

	go func() {
		<-a.hs.Done()
		close(a.done)
	}()

	return nil
}

// Stop stops the application and waits for all services to exit
func (a *App) Stop(ctx context.Context) {
	if a.hs != nil {
		a.hs.Stop(ctx)
	}
	if a.db != nil {
		a.db.Close()
	}
}

// Done returns a channel that is closed after the application has exited
func (a *App) Done() chan struct{} {
	return a.done
}
