package routes

import (
	"context"
	"net/http"
	"time"

	"github.com/templui/securedocs/internal/app"
	"github.com/templui/securedocs/internal/handler"
	"github.com/templui/securedocs/internal/middleware"
	"github.com/templui/securedocs/internal/ui"
)

func SetupRoutes(ctx context.Context, app *app.App) http.Handler {
	// Handlers
	seo := handler.NewSEOHandler(app.SitemapService)
	auth := handler.NewAuthHandler(app.AuthService)
	secure := handler.NewSecureHandler(app.AccessPipeline, app.AnalyticsService)
	health := handler.NewHealthHandler(app.DB)

	// Rate limits (login is stricter, password forms share the access limit)
	loginLimiter := middleware.NewRateLimiter(5, 15*time.Minute)
	accessLimiter := middleware.NewRateLimiter(120, time.Minute)
	go loginLimiter.CleanupLoop(ctx)
	go accessLimiter.CleanupLoop(ctx)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	// SEO
	mux.HandleFunc("GET /robots.txt", seo.Robots)
	mux.HandleFunc("GET /sitemap.xml", seo.Sitemap)
	mux.HandleFunc("GET /healthz", health.Health)

	// Secure links
	mux.HandleFunc("GET /secure/view", accessLimiter.Limit(secure.View))
	mux.HandleFunc("POST /secure/view", accessLimiter.Limit(secure.View))
	mux.HandleFunc("GET /secure/download", accessLimiter.Limit(secure.Download))

	// Permalinks
	mux.HandleFunc("GET /documents/{id}", accessLimiter.Limit(secure.Permalink))
	mux.HandleFunc("POST /documents/{id}", accessLimiter.Limit(secure.Permalink))

	// Auth
	mux.HandleFunc("POST /auth/login", loginLimiter.Limit(auth.Login))
	mux.HandleFunc("POST /auth/logout", auth.Logout)

	// ============================================================================
	// API (editors and administrators)
	// ============================================================================

	mux.HandleFunc("POST /api/documents/{id}/links", middleware.RequireAuth(secure.Links))
	mux.HandleFunc("GET /api/documents/{id}/stats", middleware.RequireAuth(secure.Stats))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/{path...}", func(w http.ResponseWriter, r *http.Request) {
		ui.Render(w, r, http.StatusNotFound, ui.AccessDenied("Not found", "The page you requested does not exist."))
	})

	// Global middleware - executed in order (top to bottom)
	return middleware.Chain(
		mux,
		middleware.Config(app.Cfg), // Config must be first (SecurityHeaders and CSRF read it)
		middleware.NonceMiddleware, // Must run before SecurityHeaders
		middleware.SecurityHeaders,
		middleware.RequestLogging,
		middleware.CSRFProtection,
		middleware.AuthMiddleware(app.AuthService, app.UserService),
		middleware.Sessions(app.SessionManager),
	)
}
