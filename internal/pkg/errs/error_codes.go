/*
Package errs provides the application error type and the business error codes
used across HTTP handlers and the chat gateway.

Codes are grouped by concern so a client (or a log line) can classify a
failure without parsing its message.
*/
package errs

// 1xxx: request parsing and validation
const (
	// ErrInvalidParams indicates request parameter validation failed.
	ErrInvalidParams = 1001

	// ErrUnsupportedMediaType indicates the Content-Type header is not accepted.
	ErrUnsupportedMediaType = 1002

	// ErrInvalidJSONFormat indicates the request body is not well-formed JSON
	// or contains unknown fields.
	ErrInvalidJSONFormat = 1003

	// ErrExtraContentInBody indicates trailing data after the JSON document.
	ErrExtraContentInBody = 1004

	// ErrRouteNotFound indicates the requested API route does not exist.
	ErrRouteNotFound = 1005
)

// 2xxx: authentication and sessions
const (
	// ErrUnauthorized indicates a protected resource was requested without a
	// usable identity.
	ErrUnauthorized = 2001

	// ErrTokenMissing indicates no bearer token accompanied the request.
	ErrTokenMissing = 2002

	// ErrTokenInvalid indicates the token failed signature or format checks.
	ErrTokenInvalid = 2003

	// ErrTokenExpired indicates the token is past its expiry.
	ErrTokenExpired = 2004

	// ErrInvalidCredentials indicates the identifier/password pair did not match.
	ErrInvalidCredentials = 2005

	// ErrSignupSessionExpired indicates the temporary Google signup token is
	// no longer valid; the delegation flow must be restarted.
	ErrSignupSessionExpired = 2006
)

// 3xxx: users and profiles
const (
	// ErrInvalidUsername indicates the username failed format validation.
	ErrInvalidUsername = 3001

	// ErrInvalidPassword indicates the password failed length validation.
	ErrInvalidPassword = 3002

	// ErrInvalidEmail indicates the email address failed format validation.
	ErrInvalidEmail = 3003

	// ErrUsernameTaken indicates the username is already registered.
	ErrUsernameTaken = 3004

	// ErrEmailTaken indicates the email address is already registered.
	ErrEmailTaken = 3005

	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = 3006

	// ErrCurrentPasswordInvalid indicates the supplied current password did
	// not match during a password change.
	ErrCurrentPasswordInvalid = 3007

	// ErrInvalidAvatarURL indicates the avatar reference is not an http(s) URL.
	ErrInvalidAvatarURL = 3008
)

// 4xxx: captcha and file uploads
const (
	// ErrCaptchaMissing indicates no captcha token was supplied.
	ErrCaptchaMissing = 4001

	// ErrCaptchaFailed indicates the captcha service rejected the token.
	ErrCaptchaFailed = 4002

	// ErrCaptchaUpstream indicates the captcha service could not be reached.
	ErrCaptchaUpstream = 4003

	// ErrFileTypeInvalid indicates the upload is not an accepted image type.
	ErrFileTypeInvalid = 4101

	// ErrFileSizeTooLarge indicates the upload exceeds the size limit.
	ErrFileSizeTooLarge = 4102
)

// 5xxx: internal failures
const (
	// ErrUnknown is the catch-all for unexpected server errors.
	ErrUnknown = 5000

	// ErrConfigUnavailable indicates a feature was requested whose server-side
	// configuration is absent.
	ErrConfigUnavailable = 5001
)
