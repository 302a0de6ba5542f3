package routes

import (
	"net/http"

	"github.com/chatkit/chatauth/internal/app"
	"github.com/chatkit/chatauth/internal/handler"
	"github.com/chatkit/chatauth/internal/middleware"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	auth := handler.NewAuthHandler(app.AuthService)
	profile := handler.NewProfileHandler(app.ProfileService)
	health := handler.NewHealthHandler(app.DB)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", health.Healthz)

	// Auth - Authentication flow (rate limited)
	rateLimiter := middleware.RateLimitAuth(app.Limiter)

	mux.HandleFunc("POST /api/auth/signup", rateLimiter(auth.Signup))
	mux.HandleFunc("POST /api/auth/login", rateLimiter(auth.Login))
	mux.HandleFunc("GET /api/auth/verify-email", auth.VerifyEmail)
	mux.HandleFunc("POST /api/auth/logout", auth.Logout)

	// ============================================================================
	// PROTECTED ROUTES
	// ============================================================================

	mux.HandleFunc("GET /api/auth/check", middleware.RequireAuth(auth.Check))
	mux.HandleFunc("PUT /api/auth/update-profile", middleware.RequireAuth(profile.UpdateProfilePic))
	mux.HandleFunc("PATCH /api/auth/update-name", middleware.RequireAuth(profile.UpdateName))

	// ============================================================================
	// FALLBACK
	// ============================================================================

	mux.HandleFunc("/", handler.NotFound)

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.RealIP(app.Cfg.TrustedProxies),
		middleware.RequestLogging,
		middleware.Recover,
		middleware.SecurityHeaders,
		middleware.CORS(app.Cfg.FrontendURL),
		middleware.CSRFProtection(app.Cfg.FrontendURL),
		middleware.AuthMiddleware(app.AuthService),
	)

	return handler
}
