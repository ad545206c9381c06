// Package internal provides the application initialization and runtime logic
// of the folio commands.
package internal

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/oauth2"
	"golang.org/x/sync/errgroup"

	"github.com/starford/folio/internal/api"
	"github.com/starford/folio/internal/assets"
	"github.com/starford/folio/internal/auth"
	"github.com/starford/folio/internal/content"
	"github.com/starford/folio/internal/ledger"
	"github.com/starford/folio/internal/mcpserver"
	"github.com/starford/folio/internal/phone"
	"github.com/starford/folio/internal/portfolio"
	"github.com/starford/folio/internal/spotify"
	"github.com/starford/folio/internal/sse"
)

var errConfigRequired = errors.New("config is required")

// core is what every command shares: the catalog and the ledger store.
type core struct {
	reg   *content.Registry
	store ledger.Store
}

func openCore(cfg *Config, logger *slog.Logger) (*core, error) {
	reg, err := content.NewRegistry(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("load content: %w", err)
	}
	store, err := ledger.Open(cfg.Ledger.Driver, cfg.Ledger.Path)
	if err != nil {
		return nil, fmt.Errorf("open ledger: %w", err)
	}

	c := reg.Catalog()
	logger.Info("Content loaded",
		slog.String("path", cfg.Content.Path),
		slog.String("version", c.Version[:12]),
		slog.Int("notes", len(c.Notes)),
		slog.Int("events", len(c.Events)))
	return &core{reg: reg, store: store}, nil
}

// Run starts the HTTP server with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	if cfg.Auth.SessionSecret == "" {
		return errors.New("auth.session_secret is required to serve")
	}

	logger, closer, err := newLogger(cfg.App, os.Stdout)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("ledger_driver", cfg.Ledger.Driver),
		slog.String("ledger_path", cfg.Ledger.Path),
		slog.Bool("spotify_enabled", cfg.Spotify.Enabled()),
		slog.String("log_level", cfg.App.LogLevel.String()))

	c, err := openCore(cfg, logger)
	if err != nil {
		return err
	}
	defer c.store.Close()

	broker := sse.NewBroker(cfg.App.EventThrottle)
	defer broker.Close()

	svc := portfolio.NewService(c.reg, c.store, broker)
	sessions := auth.NewSessions(sessionOptions(cfg))
	music := spotify.NewClient(cfg.Spotify.APIURL, nil)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(cfg, svc, sessions, music, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Reload content on change and tell connected clients.
	g.Go(func() error {
		return c.reg.Watch(gCtx, logger, func(cat *content.Catalog) {
			broker.PublishContentUpdated(cat.Version)
		})
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Streams only end when their clients leave or the broker closes.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the watcher stops with the server.
var errShutdown = errors.New("shutdown")

func sessionOptions(cfg *Config) auth.Options {
	opts := auth.Options{
		Secret: cfg.Auth.SessionSecret,
		Secure: cfg.Auth.SecureCookies,
		MaxAge: cfg.Auth.SessionMaxAge,
	}
	if cfg.Spotify.Enabled() {
		opts.OAuth = &oauth2.Config{
			ClientID:     cfg.Spotify.ClientID,
			ClientSecret: cfg.Spotify.ClientSecret,
			RedirectURL:  cfg.Spotify.RedirectURL,
			Scopes:       spotify.Scopes,
			Endpoint:     spotify.Endpoint(cfg.Spotify.AuthURL, cfg.Spotify.TokenURL),
		}
	}
	return opts
}

func newHTTPHandler(cfg *Config, svc *portfolio.Service, sessions *auth.Sessions, music *spotify.Client, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints.
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if _, err := svc.Ledger("health").Flag(req.Context(), ledger.FlagVisited); err != nil {
			slog.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Mount("/api", api.NewRouter(svc, sessions, music, broker))
	r.Method(http.MethodGet, "/assets/"+cfg.Assets.Name, assets.NewHandler(cfg.Assets.Dir, cfg.Assets.Name))

	return r
}

// RunPhone shows the terminal phone until the user quits.
func RunPhone(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// The terminal belongs to the phone; logs only go to the log file.
	logger, closer, err := newLogger(cfg.App, nil)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	popts := phone.Options{
		Profile:         cfg.Phone.Profile,
		CommitDelay:     cfg.Phone.CommitDelay,
		SettleDelay:     cfg.Phone.SettleDelay,
		LatchThreshold:  cfg.Phone.LatchThreshold,
		CommitThreshold: cfg.Phone.CommitThreshold,
		CellWidth:       cfg.Phone.CellWidth,
		WidgetInterval:  cfg.Phone.WidgetInterval,
	}
	if app.entry != "" {
		link, err := phone.ParseLink(app.entry)
		if err != nil {
			return err
		}
		popts.Entry = &link
	}

	c, err := openCore(cfg, logger)
	if err != nil {
		return err
	}
	defer c.store.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGTERM)
	defer stop()

	svc := portfolio.NewService(c.reg, c.store, nil)
	if err := phone.Run(ctx, svc, c.reg, popts, logger); err != nil {
		logger.Error("Phone error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// RunMCP serves the content tools over stdin and stdout.
func RunMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Stdout carries the protocol.
	logger, closer, err := newLogger(cfg.App, os.Stderr)
	if err != nil {
		return err
	}
	defer closer.Close()
	slog.SetDefault(logger)

	c, err := openCore(cfg, logger)
	if err != nil {
		return err
	}
	defer c.store.Close()

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := portfolio.NewService(c.reg, c.store, nil)
	srv := mcpserver.New(svc, cfg.Phone.Profile, app.version)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return c.reg.Watch(gCtx, logger, nil)
	})
	g.Go(func() error {
		logger.Info("MCP server listening on stdio")
		err := srv.Serve(gCtx, os.Stdin, os.Stdout, logger)
		if errors.Is(err, context.Canceled) {
			err = nil
		}
		return errors.Join(err, errShutdown)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("MCP server error", slog.String("error", err.Error()))
		return err
	}
	return nil
}

// OptimizeImage writes the background image encodings of src into the
// configured assets directory.
func OptimizeImage(src string, opts ...Option) (assets.Result, error) {
	app, err := newApplication(opts)
	if err != nil {
		return assets.Result{}, err
	}
	cfg := app.config

	logger, closer, err := newLogger(cfg.App, os.Stderr)
	if err != nil {
		return assets.Result{}, err
	}
	defer closer.Close()

	res, err := assets.Optimize(src, cfg.Assets.Dir, assets.Options{
		Name:     cfg.Assets.Name,
		MaxWidth: cfg.Assets.MaxWidth,
		Quality:  cfg.Assets.Quality,
	})
	if err != nil {
		return assets.Result{}, fmt.Errorf("optimize %s: %w", src, err)
	}
	logger.Info("Image optimized",
		slog.String("webp", res.WebP),
		slog.String("jpeg", res.JPEG),
		slog.String("placeholder", res.Placeholder))
	return res, nil
}
