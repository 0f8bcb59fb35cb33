package handler

import (
	"errors"
	"net/http"

	"github.com/gorilla/websocket"

	"mikuchat/internal/app/chat"
	"mikuchat/internal/pkg/auth/jwt"
	"mikuchat/internal/pkg/errs"
	"mikuchat/internal/pkg/logx"
	"mikuchat/internal/pkg/resp"
)

const (
	wsReadBufferSize  = 1024
	wsWriteBufferSize = 1024
)

// wsToken pulls the session token from the query string, falling back to the
// Authorization header. Browsers cannot set headers on a WebSocket dial, so
// the query form is the primary one.
func wsToken(r *http.Request) string {
	if token := r.URL.Query().Get("token"); token != "" {
		return token
	}
	return jwt.BearerToken(r)
}

// HandleWebSocket authenticates the handshake, upgrades the connection, and
// hands it to the hub. Auth failures are rejected before the upgrade so the
// client sees a plain HTTP status instead of a dropped socket.
func HandleWebSocket(deps *AppDeps) http.HandlerFunc {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  wsReadBufferSize,
		WriteBufferSize: wsWriteBufferSize,
		CheckOrigin:     originChecker(deps.Config),
	}

	return func(w http.ResponseWriter, r *http.Request) {
		token := wsToken(r)
		if token == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrTokenMissing))
			return
		}

		payload, err := jwt.ParseToken(token, deps.Config.JWTSecret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				resp.RespondError(w, r, errs.NewError(errs.ErrTokenExpired))
			} else {
				resp.RespondError(w, r, errs.NewError(errs.ErrTokenInvalid))
			}
			return
		}

		// The token only proves identity at issue time; the account must
		// still exist.
		u, err := deps.Users.GetByID(r.Context(), payload.ID)
		if err != nil {
			logx.Warn("websocket handshake: account lookup failed", "user_id", payload.ID, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnauthorized))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			logx.Warn("websocket upgrade failed", "user_id", u.ID, "error", err)
			return
		}

		client := chat.NewClient(deps.Hub, deps.Gateway, conn, *u)

		go client.WritePump()
		deps.Hub.Register(client, chat.DefaultChannel)
		client.SendProfile()

		logx.Info("websocket connected", "user_id", u.ID, "username", u.Username)

		// ReadPump blocks until the connection drops and owns the cleanup.
		client.ReadPump()
	}
}
