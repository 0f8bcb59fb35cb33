package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"mikuchat/internal/configs"
	"mikuchat/internal/pkg/auth/jwt"
	"mikuchat/internal/pkg/errs"
	"mikuchat/internal/pkg/logx"
	"mikuchat/internal/pkg/resp"
)

// originChecker builds the WebSocket origin policy. Development accepts any
// origin; production only the configured ones.
func originChecker(cfg *configs.AppConfig) func(r *http.Request) bool {
	allowedOrigins := make(map[string]struct{})
	for _, origin := range cfg.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	return func(r *http.Request) bool {
		if cfg.IsDevelopment() {
			return true
		}

		origin := r.Header.Get("Origin")
		if _, ok := allowedOrigins[origin]; ok {
			return true
		}

		logx.Warn("WebSocket connection rejected: origin not allowed", "origin", origin)
		return false
	}
}

// Router assembles the routing table: CORS, request logging, identity
// extraction, the REST API, the WebSocket endpoint, and the static frontend.
func Router(deps *AppDeps) http.Handler {
	r := chi.NewRouter()

	corsAllowedOrigins := []string{}
	if deps.Config.IsDevelopment() {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Route("/api", func(api chi.Router) {
		api.Use(jwt.IdentityExtractorMiddleware(deps.Config.JWTSecret))

		// API misses answer JSON, never the static fallback.
		api.NotFound(func(w http.ResponseWriter, r *http.Request) {
			resp.RespondError(w, r, errs.NewError(errs.ErrRouteNotFound))
		})

		api.Get("/health", HandleHealthCheck())
		api.Get("/misc/config", HandleFrontendConfig(deps))

		api.Route("/auth", func(auth chi.Router) {
			auth.Post("/register", HandleRegister(deps))
			auth.Post("/login", HandleLogin(deps))
			auth.Get("/google", HandleGoogleRedirect(deps))
			auth.Get("/google/callback", HandleGoogleCallback(deps))
			auth.Post("/complete-google", HandleCompleteGoogle(deps))
		})

		api.Route("/users", func(users chi.Router) {
			users.Get("/me", HandleGetCurrentUser(deps))
			users.Patch("/me", HandleUpdateProfile(deps))
			users.Post("/avatar/presign", HandleAvatarPresign(deps))
			users.Get("/{username}", HandleGetPublicProfile(deps))
		})
	})

	r.Get("/ws", HandleWebSocket(deps))

	// Everything else is the browser bundle.
	r.NotFound(StaticFileServer(deps.Config.StaticDir))

	return r
}
