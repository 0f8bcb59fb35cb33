/*
Package handler contains the HTTP edge: routing, request handlers, and the
WebSocket upgrade path of the chat gateway.
*/
package handler

import (
	"context"
	"net"
	"net/http"

	"mikuchat/internal/app/chat"
	"mikuchat/internal/app/storage"
	"mikuchat/internal/app/user"
	"mikuchat/internal/configs"
	"mikuchat/internal/pkg/auth/googleauth"
	"mikuchat/internal/pkg/auth/jwt"
	"mikuchat/internal/pkg/captcha"
	"mikuchat/internal/pkg/errs"
	"mikuchat/internal/pkg/logx"
)

// AppDeps bundles the capabilities handlers depend on. Optional features
// (Google login, captcha, avatar storage) carry nil when unconfigured and
// their endpoints answer with a configuration error.
type AppDeps struct {
	Config    *configs.AppConfig
	Hub       *chat.Hub
	Gateway   *chat.Gateway
	Users     user.Store
	Sanitizer chat.Sanitizer
	Storage   storage.Service
	Google    *googleauth.Client
	Captcha   *captcha.Verifier
}

// clientIP extracts the remote IP without the port.
func clientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		ip = r.RemoteAddr
	}
	return ip
}

// verifyCaptcha checks the Turnstile token accompanying a request. With no
// verifier configured (development) the check is skipped.
func (deps *AppDeps) verifyCaptcha(ctx context.Context, token string, r *http.Request) *errs.CustomError {
	if deps.Captcha == nil {
		logx.Debug("captcha verification skipped: no verifier configured")
		return nil
	}

	if token == "" {
		return errs.NewError(errs.ErrCaptchaMissing)
	}

	return deps.Captcha.Verify(ctx, token, clientIP(r))
}

// currentUser resolves the authenticated request identity to a live user
// record. Both the HTTP edge and the chat gateway accept a token only while
// its subject still exists.
func (deps *AppDeps) currentUser(r *http.Request) (*user.User, *errs.CustomError) {
	payload := jwt.GetPayloadFromContext(r)
	if payload == nil {
		return nil, errs.NewError(errs.ErrUnauthorized)
	}

	u, err := deps.Users.GetByID(r.Context(), payload.ID)
	if err != nil {
		logx.Warn("authenticated token references missing user", "user_id", payload.ID, "error", err)
		return nil, errs.NewError(errs.ErrUnauthorized)
	}

	return u, nil
}
