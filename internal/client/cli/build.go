package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/dmitrijs2005/taskkeeper/internal/client/client"
	"github.com/dmitrijs2005/taskkeeper/internal/client/config"
	"github.com/dmitrijs2005/taskkeeper/internal/client/guard"
	"github.com/dmitrijs2005/taskkeeper/internal/client/metrics"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/cookies"
	"github.com/dmitrijs2005/taskkeeper/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskkeeper/internal/client/services"
	"github.com/dmitrijs2005/taskkeeper/internal/client/session"
	"github.com/dmitrijs2005/taskkeeper/internal/filex"
	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
)

const databaseFile = "taskkeeper.db"

// Deps are the process-level resources Build does not create itself.
type Deps struct {
	In       io.Reader
	Out      io.Writer
	Log      logging.Logger
	Registry prometheus.Registerer
	Gatherer prometheus.Gatherer
}

// Build opens the local database and wires the session manager, HTTP client,
// services and front end. With cfg.MetricsAddr set it also serves /metrics
// from d.Gatherer. The returned close function stops that server and releases
// the database.
func Build(ctx context.Context, cfg *config.Config, d Deps) (*App, func() error, error) {
	path, err := filex.DataFile(cfg.DataDir, databaseFile)
	if err != nil {
		return nil, nil, fmt.Errorf("data dir: %w", err)
	}

	db, err := repositories.InitDatabase(ctx, path)
	if err != nil {
		return nil, nil, fmt.Errorf("error initializing database: %w", err)
	}

	tokenRepo := metadata.NewSQLiteRepository(db)
	cookieRepo := cookies.NewSQLiteRepository(db)
	m := metrics.New(d.Registry)

	app := NewApp(d.In, d.Out, guard.New(cookieRepo, d.Log), d.Log)

	mgr := session.New(tokenRepo, cookieRepo, app, nil, d.Log, session.Options{
		SecureCookie: cfg.SecureTransport(),
		Metrics:      m,
	})

	hc, err := client.NewHTTPClient(cfg.BaseURL, cfg.RequestTimeout, nil, m.Middleware(), mgr.Middleware())
	if err != nil {
		_ = db.Close()
		return nil, nil, err
	}
	mgr.SetAuthenticator(hc)

	taskSvc := services.NewTaskService(hc, db, d.Log)
	mgr.OnClear(taskSvc.Purge)

	app.Attach(Services{
		Session:   mgr,
		Auth:      services.NewAuthService(hc, mgr, d.Log),
		Tasks:     taskSvc,
		Analytics: services.NewAnalyticsService(hc, d.Log),
	})

	closeFn := db.Close
	if cfg.MetricsAddr != "" {
		g := d.Gatherer
		if g == nil {
			g = prometheus.DefaultGatherer
		}
		sctx, stop := context.WithCancel(ctx)
		if _, err := metrics.Serve(sctx, cfg.MetricsAddr, g, d.Log); err != nil {
			stop()
			_ = db.Close()
			return nil, nil, err
		}
		closeFn = func() error {
			stop()
			return db.Close()
		}
	}

	d.Log.Debug(ctx, "client ready", "base_url", cfg.BaseURL, "db", path)
	return app, closeFn, nil
}
