package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"mikuchat/internal/app/user"
	"mikuchat/internal/pkg/errs"
	"mikuchat/internal/pkg/logx"
	"mikuchat/internal/pkg/req"
	"mikuchat/internal/pkg/resp"
)

const maxBioLength = 500

// ownProfile is the authenticated self view. Unlike user.PublicProfile it
// includes the email address.
type ownProfile struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	Bio       string    `json:"bio,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func ownProfileOf(u *user.User) ownProfile {
	return ownProfile{
		ID:        u.ID,
		Username:  u.Username,
		Email:     u.Email,
		AvatarURL: u.AvatarURL,
		Bio:       u.Bio,
		Role:      u.Role.String(),
		CreatedAt: u.CreatedAt,
	}
}

// HandleGetCurrentUser returns the caller's own profile.
func HandleGetCurrentUser(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, customErr := deps.currentUser(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		resp.RespondSuccess(w, r, ownProfileOf(u))
	}
}

// HandleGetPublicProfile serves the restricted profile projection for any
// username. No authentication required.
func HandleGetPublicProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		username := user.NormalizeUsername(chi.URLParam(r, "username"))
		if username == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		u, err := deps.Users.GetByUsername(r.Context(), username)
		if err != nil {
			if errors.Is(err, user.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
				return
			}
			logx.Error(err, "profile lookup failed", "username", username)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, u.Public())
	}
}

type UpdateProfileInput struct {
	Username        *string `json:"username,omitempty"`
	Bio             *string `json:"bio,omitempty"`
	AvatarURL       *string `json:"avatarUrl,omitempty"`
	CurrentPassword *string `json:"currentPassword,omitempty"`
	NewPassword     *string `json:"newPassword,omitempty"`
}

// HandleUpdateProfile applies a partial update to the caller's profile.
// Absent fields stay untouched. A username change invalidates the embedded
// claim in outstanding tokens, so the response carries a reissued one.
func HandleUpdateProfile(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		u, customErr := deps.currentUser(r)
		if customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var input UpdateProfileInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		usernameChanged := false
		previousAvatarURL := u.AvatarURL

		if input.Username != nil {
			username := user.NormalizeUsername(*input.Username)
			if !user.ValidUsername(username) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
				return
			}
			if username != u.Username {
				u.Username = username
				usernameChanged = true
			}
		}

		if input.Bio != nil {
			bio := strings.TrimSpace(deps.Sanitizer.Sanitize(*input.Bio))
			if len(bio) > maxBioLength {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
				return
			}
			u.Bio = bio
		}

		if input.AvatarURL != nil {
			if !user.ValidAvatarURL(*input.AvatarURL) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidAvatarURL))
				return
			}
			u.AvatarURL = *input.AvatarURL
		}

		if input.NewPassword != nil {
			if !validPasswordLength(*input.NewPassword) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
				return
			}

			// Accounts that already hold a password must prove the old one.
			if u.HasPassword() {
				if input.CurrentPassword == nil {
					resp.RespondError(w, r, errs.NewError(errs.ErrCurrentPasswordInvalid))
					return
				}
				if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(*input.CurrentPassword)); err != nil {
					resp.RespondError(w, r, errs.NewError(errs.ErrCurrentPasswordInvalid))
					return
				}
			}

			hashed, err := bcrypt.GenerateFromPassword([]byte(*input.NewPassword), bcrypt.DefaultCost)
			if err != nil {
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			u.PasswordHash = string(hashed)
		}

		if err := deps.Users.Update(r.Context(), u); err != nil {
			switch {
			case errors.Is(err, user.ErrDuplicateUsername):
				resp.RespondError(w, r, errs.NewError(errs.ErrUsernameTaken))
			case errors.Is(err, user.ErrNotFound):
				resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			default:
				logx.Error(err, "profile update failed", "user_id", u.ID)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			}
			return
		}

		// A replaced uploaded avatar leaves an orphan object behind; remove it
		// off the request path.
		if deps.Storage != nil && input.AvatarURL != nil && previousAvatarURL != u.AvatarURL {
			if key, ok := deps.Storage.ObjectKey(previousAvatarURL); ok {
				go func() {
					ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
					defer cancel()
					if err := deps.Storage.Delete(ctx, key); err != nil {
						logx.Warn("failed to delete replaced avatar object", "key", key, "error", err)
					}
				}()
			}
		}

		data := map[string]any{"user": ownProfileOf(u)}

		if usernameChanged {
			token, err := mintSessionToken(u, deps.Config.JWTSecret)
			if err != nil {
				logx.Error(err, "token reissue after username change failed", "user_id", u.ID)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
				return
			}
			data["token"] = token
		}

		logx.Info("profile updated", "user_id", u.ID, "username_changed", usernameChanged)

		resp.RespondSuccess(w, r, data)
	}
}
