package handler

import (
	"errors"
	"net/http"
	"net/url"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"mikuchat/internal/app/user"
	"mikuchat/internal/pkg/auth/googleauth"
	"mikuchat/internal/pkg/auth/jwt"
	"mikuchat/internal/pkg/errs"
	"mikuchat/internal/pkg/logx"
	"mikuchat/internal/pkg/req"
	"mikuchat/internal/pkg/resp"
)

const (
	minPasswordLen = 6
	maxPasswordLen = 50

	// oauthStateCookie carries the CSRF state value across the Google
	// consent redirect.
	oauthStateCookie = "oauth_state"
)

func validPasswordLength(password string) bool {
	length := utf8.RuneCountInString(password)
	return length >= minPasswordLen && length <= maxPasswordLen
}

// mintSessionToken signs a session token for the user's current identity.
func mintSessionToken(u *user.User, secret string) (string, error) {
	payload := &jwt.Payload{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role.String(),
	}
	return jwt.GenerateToken(payload, secret, jwt.SessionExpiration)
}

type RegisterInput struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	Password       string `json:"password"`
	AvatarURL      string `json:"avatarUrl,omitempty"`
	TurnstileToken string `json:"turnstileToken,omitempty"`
}

// HandleRegister creates a password account. The response carries no token;
// the client signs in afterwards.
func HandleRegister(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input RegisterInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := deps.verifyCaptcha(r.Context(), input.TurnstileToken, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		username := user.NormalizeUsername(input.Username)
		email := user.NormalizeEmail(input.Email)

		if !user.ValidUsername(username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}
		if !user.ValidEmail(email) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidEmail))
			return
		}
		if !validPasswordLength(input.Password) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}
		if !user.ValidAvatarURL(input.AvatarURL) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidAvatarURL))
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		avatarURL := input.AvatarURL
		if avatarURL == "" {
			avatarURL = user.DefaultAvatarURL(username)
		}

		newUser := &user.User{
			Username:     username,
			Email:        email,
			PasswordHash: string(hashed),
			AvatarURL:    avatarURL,
			Role:         user.RoleUser,
		}

		if err := deps.Users.Create(r.Context(), newUser); err != nil {
			switch {
			case errors.Is(err, user.ErrDuplicateUsername):
				resp.RespondError(w, r, errs.NewError(errs.ErrUsernameTaken))
			case errors.Is(err, user.ErrDuplicateEmail):
				resp.RespondError(w, r, errs.NewError(errs.ErrEmailTaken))
			default:
				logx.Error(err, "failed to create user", "username", username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			}
			return
		}

		logx.Info("user registered", "user_id", newUser.ID, "username", newUser.Username)

		resp.RespondCreated(w, r, map[string]any{
			"message": "Account created. You can sign in now.",
		})
	}
}

type LoginInput struct {
	// Identifier is a username or an email address.
	Identifier     string `json:"identifier"`
	Password       string `json:"password"`
	TurnstileToken string `json:"turnstileToken,omitempty"`
}

// HandleLogin verifies a credential pair and issues a session token.
// Accounts without a password (Google-only) always fail here.
func HandleLogin(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input LoginInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := deps.verifyCaptcha(r.Context(), input.TurnstileToken, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if input.Identifier == "" || input.Password == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		u, err := deps.Users.GetByIdentifier(r.Context(), input.Identifier)
		if err != nil {
			logx.Warn("login: user lookup failed", "identifier", input.Identifier, "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if !u.HasPassword() {
			logx.Warn("login: password attempt on credential-less account", "user_id", u.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
			logx.Warn("login: password mismatch", "user_id", u.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidCredentials))
			return
		}

		token, err := mintSessionToken(u, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "login: token generation failed", "user_id", u.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, map[string]any{"token": token})
	}
}

// HandleGoogleRedirect starts the delegated login flow by sending the client
// to the Google consent page with a fresh CSRF state value.
func HandleGoogleRedirect(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Google == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrConfigUnavailable))
			return
		}

		state := uuid.NewString()

		http.SetCookie(w, &http.Cookie{
			Name:     oauthStateCookie,
			Value:    state,
			Path:     "/api/auth",
			MaxAge:   int((10 * time.Minute).Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
			Secure:   !deps.Config.IsDevelopment(),
		})

		http.Redirect(w, r, deps.Google.AuthCodeURL(state), http.StatusTemporaryRedirect)
	}
}

// HandleGoogleCallback finishes the consent flow. A known Google identity is
// signed in directly; an unknown one receives a short-lived signup token and
// is redirected to the registration-completion page.
func HandleGoogleCallback(deps *AppDeps) http.HandlerFunc {
	failureRedirect := "/index.html?error=google_auth_failed"

	return func(w http.ResponseWriter, r *http.Request) {
		if deps.Google == nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrConfigUnavailable))
			return
		}

		stateCookie, err := r.Cookie(oauthStateCookie)
		if err != nil || stateCookie.Value == "" || stateCookie.Value != r.URL.Query().Get("state") {
			logx.Warn("google callback: state mismatch")
			http.Redirect(w, r, failureRedirect, http.StatusTemporaryRedirect)
			return
		}

		code := r.URL.Query().Get("code")
		if code == "" {
			http.Redirect(w, r, failureRedirect, http.StatusTemporaryRedirect)
			return
		}

		profile, err := deps.Google.FetchProfile(r.Context(), code)
		if err != nil {
			logx.Error(err, "google callback: profile fetch failed")
			http.Redirect(w, r, failureRedirect, http.StatusTemporaryRedirect)
			return
		}

		existing, err := deps.Users.GetByGoogleID(r.Context(), profile.ID)
		if err == nil {
			token, tokenErr := mintSessionToken(existing, deps.Config.JWTSecret)
			if tokenErr != nil {
				logx.Error(tokenErr, "google callback: token generation failed", "user_id", existing.ID)
				http.Redirect(w, r, failureRedirect, http.StatusTemporaryRedirect)
				return
			}

			logx.Info("user signed in with Google", "user_id", existing.ID, "username", existing.Username)
			http.Redirect(w, r, "/app.html?token="+url.QueryEscape(token), http.StatusTemporaryRedirect)
			return
		}
		if !errors.Is(err, user.ErrNotFound) {
			logx.Error(err, "google callback: user lookup failed")
			http.Redirect(w, r, failureRedirect, http.StatusTemporaryRedirect)
			return
		}

		// First visit from this Google account: profile completion required.
		avatarURL := ""
		if user.ValidAvatarURL(profile.Picture) {
			avatarURL = profile.Picture
		}

		signupClaims := &jwt.GoogleSignupClaims{
			GoogleID:          profile.ID,
			Email:             user.NormalizeEmail(profile.Email),
			SuggestedUsername: googleauth.SuggestedUsername(profile.Name),
			AvatarURL:         avatarURL,
		}

		tempToken, err := jwt.GenerateGoogleSignupToken(signupClaims, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "google callback: signup token generation failed")
			http.Redirect(w, r, failureRedirect, http.StatusTemporaryRedirect)
			return
		}

		logx.Info("new Google signup started", "email", signupClaims.Email)
		http.Redirect(w, r, "/index.html?tempToken="+url.QueryEscape(tempToken), http.StatusTemporaryRedirect)
	}
}

type CompleteGoogleInput struct {
	Username       string `json:"username"`
	Password       string `json:"password"`
	TempToken      string `json:"tempToken"`
	TurnstileToken string `json:"turnstileToken,omitempty"`
}

// HandleCompleteGoogle creates the account for a verified Google identity
// once the user has chosen a username and password, and signs them in.
func HandleCompleteGoogle(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var input CompleteGoogleInput
		if customErr := req.BindJSON(w, r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		if customErr := deps.verifyCaptcha(r.Context(), input.TurnstileToken, r); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		username := user.NormalizeUsername(input.Username)

		if username == "" || input.Password == "" || input.TempToken == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}
		if !user.ValidUsername(username) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidUsername))
			return
		}
		if !validPasswordLength(input.Password) {
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidPassword))
			return
		}

		claims, err := jwt.ParseGoogleSignupToken(input.TempToken, deps.Config.JWTSecret)
		if err != nil {
			logx.Warn("complete-google: invalid or expired signup token", "error", err)
			resp.RespondError(w, r, errs.NewError(errs.ErrSignupSessionExpired))
			return
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
		if err != nil {
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		avatarURL := claims.AvatarURL
		if avatarURL == "" {
			avatarURL = user.DefaultAvatarURL(username)
		}

		newUser := &user.User{
			Username:     username,
			Email:        claims.Email,
			PasswordHash: string(hashed),
			GoogleID:     claims.GoogleID,
			AvatarURL:    avatarURL,
			Role:         user.RoleUser,
		}

		if err := deps.Users.Create(r.Context(), newUser); err != nil {
			switch {
			case errors.Is(err, user.ErrDuplicateUsername):
				resp.RespondError(w, r, errs.NewError(errs.ErrUsernameTaken))
			case errors.Is(err, user.ErrDuplicateEmail), errors.Is(err, user.ErrDuplicateGoogleID):
				resp.RespondError(w, r, errs.NewError(errs.ErrEmailTaken))
			default:
				logx.Error(err, "complete-google: failed to create user", "username", username)
				resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			}
			return
		}

		token, err := mintSessionToken(newUser, deps.Config.JWTSecret)
		if err != nil {
			logx.Error(err, "complete-google: token generation failed", "user_id", newUser.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		logx.Info("user completed Google registration", "user_id", newUser.ID, "username", newUser.Username)

		resp.RespondCreated(w, r, map[string]any{"token": token})
	}
}
