package jwt

import "github.com/golang-jwt/jwt"

// Payload is the session token claim set. A session token is the only
// credential accepted by both the HTTP edge and the chat gateway; it is
// never stored server-side and is invalidated by expiry alone.
type Payload struct {
	jwt.StandardClaims

	// ID is the numeric identifier of the authenticated user.
	ID int64 `json:"id"`

	// Username is the user's display name at mint time. A username change
	// mints a replacement token carrying the new value.
	Username string `json:"username"`

	// Role is the user's role at mint time ("user", "moderator" or "admin").
	Role string `json:"role"`
}

// GoogleSignupClaims carries a verified Google identity between the OAuth
// callback and the complete-registration call. It is short-lived and is not
// a session token: it grants no access beyond finishing signup.
type GoogleSignupClaims struct {
	jwt.StandardClaims

	GoogleID          string `json:"googleId"`
	Email             string `json:"email"`
	SuggestedUsername string `json:"suggestedUsername"`
	AvatarURL         string `json:"avatarUrl,omitempty"`
}
