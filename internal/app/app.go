package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/templui/securedocs/internal/config"
	"github.com/templui/securedocs/internal/db"
	"github.com/templui/securedocs/internal/markdown"
	"github.com/templui/securedocs/internal/repository"
	"github.com/templui/securedocs/internal/service"
	"github.com/templui/securedocs/internal/session"
	"github.com/templui/securedocs/internal/storage"
)

type App struct {
	Cfg                *config.Config
	DB                 *sqlx.DB
	SessionManager     *session.Manager
	DocumentRepository repository.DocumentRepository
	TokenCodec         *service.TokenCodec
	AuthService        *service.AuthService
	UserService        *service.UserService
	AnalyticsService   *service.AnalyticsService
	SitemapService     *service.SitemapService
	AccessPipeline     *service.AccessPipeline

	memorySessions *session.MemoryStore
	redisSessions  *session.RedisStore
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database and run migrations
	database, err := db.Open(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	a := &App{Cfg: cfg, DB: database}

	// Sessions
	var store session.Store
	switch cfg.SessionStore {
	case "redis":
		a.redisSessions = session.NewRedisStore(session.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = a.redisSessions.Ping(ctx)
		cancel()
		if err != nil {
			_ = a.Close()
			return nil, fmt.Errorf("failed to connect session store: %v", err)
		}
		store = a.redisSessions
	case "memory":
		a.memorySessions = session.NewMemoryStore()
		store = a.memorySessions
	default:
		_ = a.Close()
		return nil, fmt.Errorf("unknown session store %q", cfg.SessionStore)
	}
	a.SessionManager = session.NewManager(store, cfg.SessionTTL, cfg.IsProduction())

	// Repositories
	userRepository := repository.NewUserRepository(database)
	documentRepository := repository.NewDocumentRepository(database)
	analyticsRepository := repository.NewAnalyticsRepository(database)

	// Storage
	local, err := storage.NewLocalStorage(cfg.UploadsDir)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	s3Storage, err := storage.New(cfg)
	if err != nil {
		_ = a.Close()
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}
	resolver := storage.NewResolver(
		local,
		s3Storage,
		storage.NewHTTPSource(cfg.RemoteProbeTimeout, cfg.RemoteFetchTimeout),
		cfg.AppURL+"/uploads",
	)

	// Services
	codec := service.NewTokenCodec(cfg.SecureLinkSecret)
	analyticsService := service.NewAnalyticsService(analyticsRepository)

	a.DocumentRepository = documentRepository
	a.TokenCodec = codec
	a.AuthService = service.NewAuthService(userRepository, cfg.JWTSecret, cfg.IsProduction(), cfg.JWTExpiry)
	a.UserService = service.NewUserService(userRepository)
	a.AnalyticsService = analyticsService
	a.SitemapService = service.NewSitemapService(documentRepository, cfg.AppURL, cfg.HideFromSitemap)
	a.AccessPipeline = service.NewAccessPipeline(
		documentRepository,
		codec,
		service.NewAccessPolicy(cfg.Settings()),
		service.RoleCapabilities{},
		service.NewGrantStore(cfg.SessionGrantTTL),
		service.NewDeliveryService(resolver, cfg.DownloadChunkSize),
		analyticsService,
		markdown.NewParser(),
		cfg.AppURL,
		cfg.SecureLinkTTL,
	)

	return a, nil
}

// Run starts background maintenance until ctx is done.
func (a *App) Run(ctx context.Context) {
	if a.memorySessions != nil {
		go a.memorySessions.CleanupLoop(ctx, 10*time.Minute)
	}
}

func (a *App) Close() error {
	if a.redisSessions != nil {
		_ = a.redisSessions.Close()
	}
	if a.DB != nil {
		err := db.Close(a.DB)
		if err != nil {
			slog.Error("failed to close database", "error", err)
			return err
		}
	}
	return nil
}
