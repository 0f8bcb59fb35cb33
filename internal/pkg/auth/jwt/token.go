package jwt

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const (
	// SessionExpiration is the lifetime of a session token.
	SessionExpiration = 7 * 24 * time.Hour

	// GoogleSignupExpiration is the lifetime of the temporary token minted
	// during an incomplete Google signup.
	GoogleSignupExpiration = 10 * time.Minute

	// TokenIssuer identifies tokens minted by this server.
	TokenIssuer = "mikuchat-server"

	// Subjects keep a session token from passing as a signup token and
	// vice versa.
	subjectSession      = "session"
	subjectGoogleSignup = "google_signup"
)

// ErrTokenExpired is returned by the parse functions when the token's
// signature is fine but its expiry has passed.
var ErrTokenExpired = errors.New("token expired")

// ErrTokenInvalid is returned for any other verification failure: bad
// signature, malformed structure, or wrong signing method.
var ErrTokenInvalid = errors.New("token malformed or invalid")

// GenerateToken signs a session token for the given payload.
// The standard claims are overwritten with fresh issue/expiry values.
func GenerateToken(payload *Payload, secretKey string, duration time.Duration) (string, error) {
	now := time.Now()

	payload.StandardClaims = jwt.StandardClaims{
		ExpiresAt: now.Add(duration).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
		Subject:   subjectSession,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, payload)

	return token.SignedString([]byte(secretKey))
}

// ParseToken verifies a session token and returns its claims.
// Expired tokens yield ErrTokenExpired; every other failure yields
// ErrTokenInvalid so callers can report the two cases distinctly.
func ParseToken(tokenString string, secretKey string) (*Payload, error) {
	claims := &Payload{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, classifyError(err)
	}

	if !token.Valid || claims.Subject != subjectSession {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// GenerateGoogleSignupToken signs the temporary token carrying a verified
// Google identity through the registration-completion step.
func GenerateGoogleSignupToken(claims *GoogleSignupClaims, secretKey string) (string, error) {
	now := time.Now()

	claims.StandardClaims = jwt.StandardClaims{
		ExpiresAt: now.Add(GoogleSignupExpiration).Unix(),
		IssuedAt:  now.Unix(),
		Issuer:    TokenIssuer,
		Subject:   subjectGoogleSignup,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	return token.SignedString([]byte(secretKey))
}

// ParseGoogleSignupToken verifies a temporary Google signup token.
func ParseGoogleSignupToken(tokenString string, secretKey string) (*GoogleSignupClaims, error) {
	claims := &GoogleSignupClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secretKey), nil
	})

	if err != nil {
		return nil, classifyError(err)
	}

	if !token.Valid || claims.Subject != subjectGoogleSignup {
		return nil, ErrTokenInvalid
	}

	return claims, nil
}

// classifyError reduces the library's validation error to the two cases the
// application distinguishes: expired versus everything else.
func classifyError(err error) error {
	var validationErr *jwt.ValidationError
	if errors.As(err, &validationErr) && validationErr.Errors&jwt.ValidationErrorExpired != 0 {
		return ErrTokenExpired
	}
	return ErrTokenInvalid
}
