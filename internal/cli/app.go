// Package cli assembles the runtime graph (provider, store, locker,
// reporters, session manager) from a config.Config for the commands.
package cli

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/aretw0/boardgen"
	"github.com/aretw0/boardgen/internal/config"
	"github.com/aretw0/boardgen/internal/logging"
	"github.com/aretw0/boardgen/pkg/adapters/file"
	"github.com/aretw0/boardgen/pkg/adapters/memory"
	"github.com/aretw0/boardgen/pkg/adapters/openai"
	"github.com/aretw0/boardgen/pkg/adapters/redis"
	"github.com/aretw0/boardgen/pkg/domain"
	"github.com/aretw0/boardgen/pkg/observability"
	"github.com/aretw0/boardgen/pkg/persistence/middleware"
	"github.com/aretw0/boardgen/pkg/ports"
	"github.com/aretw0/boardgen/pkg/provider"
	"github.com/aretw0/boardgen/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// App is the wired runtime shared by every command.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Registry *prometheus.Registry
	Reporter domain.Reporter
	Provider ports.ContentProvider
	Store    ports.BoardStore
	Locker   ports.DistributedLocker
	Sessions *session.Manager

	closers []io.Closer
}

// AppOptions tweaks NewApp for commands and tests.
type AppOptions struct {
	// LogWriter receives logs (default os.Stderr).
	LogWriter io.Writer
	// Provider overrides the configured provider.
	Provider ports.ContentProvider
}

// NewApp builds the runtime graph from cfg.
func NewApp(cfg *config.Config, opts AppOptions) (*App, error) {
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	if opts.LogWriter == nil {
		opts.LogWriter = os.Stderr
	}
	app := &App{
		Config:   cfg,
		Logger:   logging.NewWithWriter(opts.LogWriter, level, cfg.LogFormat),
		Registry: prometheus.NewRegistry(),
	}
	app.Registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	metrics, err := observability.NewPrometheusReporter(app.Registry)
	if err != nil {
		return nil, fmt.Errorf("failed to register metrics: %w", err)
	}
	app.Reporter = observability.Multi(observability.NewLogReporter(app.Logger), metrics)

	checker := ports.ConnectivityChecker(ports.AlwaysOnline{})
	app.Provider = opts.Provider
	if app.Provider == nil {
		p, c, err := buildProvider(cfg.Provider, app.Logger)
		if err != nil {
			return nil, err
		}
		app.Provider, checker = p, c
	}
	if cfg.Provider.RequestsPerMinute > 0 {
		app.Provider = provider.NewRateLimited(app.Provider, cfg.Provider.RequestsPerMinute)
	}

	if err := app.buildStore(cfg.Store); err != nil {
		return nil, err
	}

	sessionOpts := []session.Option{
		session.WithLogger(app.Logger),
		session.WithBoardOptions(
			boardgen.WithProvider(app.Provider),
			boardgen.WithReporter(app.Reporter),
			boardgen.WithLogger(app.Logger),
			boardgen.WithRetryPolicy(cfg.RetryPolicy()),
			boardgen.WithConnectivityChecker(checker),
		),
	}
	if app.Locker != nil {
		sessionOpts = append(sessionOpts, session.WithLocker(app.Locker))
	}
	app.Sessions = session.NewManager(app.Store, sessionOpts...)
	return app, nil
}

func buildProvider(cfg config.ProviderConfig, logger *slog.Logger) (ports.ContentProvider, ports.ConnectivityChecker, error) {
	switch cfg.Kind {
	case "openai":
		opts := []openai.Option{
			openai.WithModel(cfg.Model),
			openai.WithLogger(logger),
			openai.WithHTTPClient(&http.Client{Timeout: cfg.Timeout}),
		}
		if cfg.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
		}
		p, err := openai.New(cfg.APIKey, opts...)
		if err != nil {
			return nil, nil, err
		}
		return p, p, nil
	case "static", "":
		return provider.NewStatic(), ports.AlwaysOnline{}, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider kind %q", cfg.Kind)
	}
}

func (a *App) buildStore(cfg config.StoreConfig) error {
	var store ports.BoardStore
	switch cfg.Kind {
	case "memory":
		store = memory.NewStore()
	case "redis":
		var opts []redis.Option
		if cfg.RedisPrefix != "" {
			opts = append(opts, redis.WithPrefix(cfg.RedisPrefix))
		}
		if cfg.TTL > 0 {
			opts = append(opts, redis.WithTTL(cfg.TTL))
		}
		rs := redis.New(cfg.RedisAddr, cfg.RedisPass, 0, opts...)
		a.closers = append(a.closers, rs)
		a.Locker = redis.NewLocker(rs.Client(), "boardgen:lock:")
		store = rs
	case "file", "":
		store = file.New(cfg.Path)
	default:
		return fmt.Errorf("unknown store kind %q", cfg.Kind)
	}

	if cfg.SealKey != "" {
		key, err := base64.StdEncoding.DecodeString(cfg.SealKey)
		if err != nil {
			return fmt.Errorf("invalid seal key: %w", err)
		}
		mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key})
		if err != nil {
			return err
		}
		store = middleware.Chain(store, mw)
	}
	a.Store = store
	return nil
}

// Close waits for in-flight generations, then releases connections.
func (a *App) Close() error {
	a.Sessions.Wait()
	var errs []error
	for _, c := range a.closers {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}

// OpenOrCreate opens id, creating it with the configured shape when missing.
func (a *App) OpenOrCreate(ctx context.Context, id string) (*boardgen.Board, bool, error) {
	b, err := a.Sessions.Open(ctx, id)
	if err == nil {
		return b, false, nil
	}
	if !errors.Is(err, domain.ErrBoardNotFound) {
		return nil, false, err
	}
	bc := a.Config.Board
	b, err = a.Sessions.Create(ctx, id, bc.Topic, bc.Sections, bc.CellsPerSection, bc.Scale)
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}
