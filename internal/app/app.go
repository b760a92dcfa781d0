package app

import (
	"context"
	"strings"
	"time"

	"github.com/bobmcallan/filings-portal/internal/client"
	"github.com/bobmcallan/filings-portal/internal/common"
	"github.com/bobmcallan/filings-portal/internal/config"
	"github.com/bobmcallan/filings-portal/internal/dashboard"
	"github.com/bobmcallan/filings-portal/internal/handlers"
	"github.com/bobmcallan/filings-portal/internal/mcp"
)

// janitorInterval is how often expired dashboard sessions are swept.
const janitorInterval = time.Minute

// App holds all application components and dependencies.
type App struct {
	Config *config.Config
	Logger *common.Logger

	Client   *client.FilingsClient
	Sessions *dashboard.Sessions

	// HTTP handlers
	DashboardHandler    *handlers.DashboardHandler
	StaticHandler       *handlers.StaticHandler
	HealthHandler       *handlers.HealthHandler
	VersionHandler      *handlers.VersionHandler
	ServerHealthHandler *handlers.ServerHealthHandler
	MCPHandler          *mcp.Handler

	stopJanitor context.CancelFunc
}

// New initializes the application with all dependencies.
func New(cfg *config.Config, logger *common.Logger) (*App, error) {
	a := &App{
		Config: cfg,
		Logger: logger,
	}

	// Validate environment setting
	env := strings.ToLower(strings.TrimSpace(cfg.Environment))
	if cfg.IsDevMode() {
		logger.Warn().Msg("RUNNING IN DEV MODE: templates render dev markers")
	} else if env != "prod" && env != "" {
		logger.Warn().
			Str("environment", cfg.Environment).
			Msg("unrecognized environment value, defaulting to prod behavior")
	}

	a.initDashboard()
	a.initHandlers()

	logger.Info().
		Str("api_url", cfg.API.URL).
		Int("tickers", len(cfg.Dashboard.Tickers)).
		Int("concepts", len(cfg.Dashboard.Concepts)).
		Msg("application initialization complete")

	return a, nil
}

// initDashboard creates the backend client and the session registry.
func (a *App) initDashboard() {
	a.Client = client.NewFilingsClient(a.Config.API.URL, a.Config.API.GetTimeout())

	opts := dashboard.Options{
		Tickers:        a.Config.Dashboard.Tickers,
		Concepts:       a.Config.Dashboard.Concepts,
		DefaultTicker:  a.Config.Dashboard.DefaultTicker,
		DefaultConcept: a.Config.Dashboard.DefaultConcept,
	}
	a.Sessions = dashboard.NewSessions(
		a.Client,
		a.Logger,
		opts,
		a.Config.Dashboard.GetSessionTTL(),
		a.Config.Dashboard.MaxSessions,
	)

	ctx, cancel := context.WithCancel(context.Background())
	a.stopJanitor = cancel
	go a.Sessions.Janitor(ctx, janitorInterval)
}

// initHandlers initializes all HTTP handlers.
func (a *App) initHandlers() {
	a.DashboardHandler = handlers.NewDashboardHandler(a.Logger, a.Config.IsDevMode(), a.Sessions, a.Config.Dashboard.GetSettleWindow())
	a.StaticHandler = handlers.NewStaticHandler(a.Logger)
	a.HealthHandler = handlers.NewHealthHandler(a.Logger, a.Sessions)
	a.VersionHandler = handlers.NewVersionHandler(a.Logger)
	a.ServerHealthHandler = handlers.NewServerHealthHandler(a.Logger, a.Client)

	if a.Config.MCP.Enabled {
		a.MCPHandler = mcp.NewHandler(a.Client, a.Logger)
	}

	a.Logger.Debug().Msg("HTTP handlers initialized")
}

// Close closes all application resources.
func (a *App) Close() error {
	if a.stopJanitor != nil {
		a.stopJanitor()
	}
	return nil
}
