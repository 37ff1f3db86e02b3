package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"
	"gorm.io/gorm"

	"batchbook/internal/assets"
	"batchbook/internal/auth"
	"batchbook/internal/catalog"
	"batchbook/internal/config"
	"batchbook/internal/editor"
	"batchbook/internal/handlers"
	applog "batchbook/internal/log"
	"batchbook/internal/metrics"
	"batchbook/internal/session"
	"batchbook/internal/store"
)

// Config captures the runtime configuration for the HTTP server.
type Config struct {
	Addr      string
	Session   SessionConfig
	Database  *gorm.DB
	Storage   config.StorageConfig
	ChildSync string
}

// SessionConfig controls session behavior for the HTTP server.
type SessionConfig struct {
	Lifetime     time.Duration
	CookieName   string
	CookieDomain string
	CookieSecure bool
}

// Server wraps an http.Server and exposes helpers for bootstrapping a
// production-ready web service.
type Server struct {
	config      Config
	httpServer  *http.Server
	metrics     *metrics.Collector
	sessions    *session.Manager
	unsubscribe func()
}

// New builds a new Server using the provided configuration.
func New(cfg Config) (*Server, error) {
	ctx := context.Background()
	applog.Debug(ctx, "initializing server",
		"addr", cfg.Addr,
		"sessionLifetime", cfg.Session.Lifetime.String(),
		"sessionCookie", cfg.Session.CookieName,
		"storageDriver", cfg.Storage.Driver,
	)

	if cfg.Database == nil {
		return nil, fmt.Errorf("server requires a database")
	}

	sessionCfg := cfg.Session
	if sessionCfg.Lifetime <= 0 {
		applog.Debug(ctx, "session lifetime not provided, using default")
		sessionCfg.Lifetime = 12 * time.Hour
	}
	if strings.TrimSpace(sessionCfg.CookieName) == "" {
		applog.Debug(ctx, "session cookie name not provided, using default")
		sessionCfg.CookieName = "batchbook_session"
	}

	sessionManager := scs.New()
	sessionManager.Lifetime = sessionCfg.Lifetime
	sessionManager.Cookie.Name = sessionCfg.CookieName
	sessionManager.Cookie.Domain = sessionCfg.CookieDomain
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.Persist = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = sessionCfg.CookieSecure

	applog.Debug(ctx, "session manager configured",
		"cookieName", sessionCfg.CookieName,
		"cookieDomain", sessionCfg.CookieDomain,
		"cookieSecure", sessionCfg.CookieSecure,
	)

	collector := metrics.NewCollector()
	accounts := auth.NewService(cfg.Database)
	sessions := session.NewManager(sessionManager, accounts)
	unsubscribe := sessions.Subscribe(func(event session.Event) {
		collector.ObserveSessionEvent(string(event.Kind))
		applog.Info(ctx, "session changed", "kind", string(event.Kind), "userID", event.Identity.UserID)
	})

	objects, files, err := newObjectStore(ctx, cfg.Storage)
	if err != nil {
		unsubscribe()
		return nil, err
	}

	records := store.New(cfg.Database)
	handlers.Configure(handlers.Dependencies{
		Sessions:     sessions,
		Accounts:     accounts,
		Store:        records,
		Uploads:      assets.NewManager(objects, collector),
		Catalog:      catalog.New(records),
		Metrics:      collector,
		ChildSync:    editor.ParseChildSync(cfg.ChildSync),
		RecipeBucket: cfg.Storage.RecipeBucket,
		BatchBucket:  cfg.Storage.BatchBucket,
	})

	applog.Debug(ctx, "handler dependencies configured")

	handler := sessions.LoadAndSave(newRouter(collector.Handler(), files))

	applog.Debug(ctx, "http handler chain prepared")

	return &Server{
		config: cfg,
		httpServer: &http.Server{
			Addr:              cfg.Addr,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
		},
		metrics:     collector,
		sessions:    sessions,
		unsubscribe: unsubscribe,
	}, nil
}

// newObjectStore returns the configured image store and, for the local
// driver, the handler that serves it.
func newObjectStore(ctx context.Context, cfg config.StorageConfig) (assets.ObjectStore, http.Handler, error) {
	switch cfg.Driver {
	case config.StorageDriverS3:
		s3Store, err := assets.NewS3Store(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("configure s3 storage: %w", err)
		}
		applog.Debug(ctx, "using s3 image storage", "endpoint", cfg.Endpoint, "region", cfg.Region)
		return s3Store, nil, nil
	default:
		root := cfg.Root
		if strings.TrimSpace(root) == "" {
			root = "data/storage"
		}
		base := cfg.PublicBaseURL
		if strings.TrimSpace(base) == "" {
			base = "/storage"
		}
		local := assets.NewLocalStore(root, base)
		applog.Debug(ctx, "using local image storage", "root", root, "publicURL", base)
		return local, local.Handler(), nil
	}
}

// Start begins serving HTTP traffic using the underlying http.Server.
func (s *Server) Start() error {
	applog.Debug(context.Background(), "server starting listener", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Stop gracefully shuts down the HTTP server with a timeout.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	applog.Debug(ctx, "server initiating graceful shutdown")
	if s.unsubscribe != nil {
		s.unsubscribe()
	}
	return s.httpServer.Shutdown(ctx)
}

// Handler exposes the configured HTTP handler, enabling integration tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}
