package handler

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"mikuchat/internal/pkg/errs"
	"mikuchat/internal/pkg/resp"
)

// HandleHealthCheck answers liveness probes.
func HandleHealthCheck() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, r, map[string]any{"status": "ok"})
	}
}

// HandleFrontendConfig exposes the public configuration the browser bundle
// needs before any user is signed in.
func HandleFrontendConfig(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Config.TurnstileSiteKey == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrConfigUnavailable))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{
			"cloudflareSiteKey": deps.Config.TurnstileSiteKey,
			"googleEnabled":     deps.Config.GoogleConfigured(),
		})
	}
}

// StaticFileServer serves the browser bundle. Paths with no matching file
// fall back to index.html so the landing page handles unknown routes.
func StaticFileServer(staticDir string) http.HandlerFunc {
	fileServer := http.FileServer(http.Dir(staticDir))

	return func(w http.ResponseWriter, r *http.Request) {
		requested := filepath.Join(staticDir, filepath.Clean("/"+r.URL.Path))

		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, r)
			return
		}

		if strings.HasPrefix(r.URL.Path, "/api/") {
			resp.RespondError(w, r, errs.NewError(errs.ErrRouteNotFound))
			return
		}

		http.ServeFile(w, r, filepath.Join(staticDir, "index.html"))
	}
}
