/*
Package errs provides the application error type and the business error codes
used across HTTP handlers and the chat gateway.

errorMap binds every code to its client message and HTTP status.
*/
package errs

import "net/http"

var errorMap = map[int]CustomError{
	// 1xxx: request parsing and validation
	ErrInvalidParams:        {Code: ErrInvalidParams, Message: "Invalid request parameters.", Status: http.StatusBadRequest},
	ErrUnsupportedMediaType: {Code: ErrUnsupportedMediaType, Message: "Unsupported request format.", Status: http.StatusUnsupportedMediaType},
	ErrInvalidJSONFormat:    {Code: ErrInvalidJSONFormat, Message: "Request body is not valid JSON.", Status: http.StatusBadRequest},
	ErrExtraContentInBody:   {Code: ErrExtraContentInBody, Message: "Request contains unexpected data.", Status: http.StatusBadRequest},
	ErrRouteNotFound:        {Code: ErrRouteNotFound, Message: "The requested resource does not exist.", Status: http.StatusNotFound},

	// 2xxx: authentication and sessions
	ErrUnauthorized:         {Code: ErrUnauthorized, Message: "Please sign in to continue.", Status: http.StatusUnauthorized},
	ErrTokenMissing:         {Code: ErrTokenMissing, Message: "Access denied. No token provided.", Status: http.StatusUnauthorized},
	ErrTokenInvalid:         {Code: ErrTokenInvalid, Message: "Token is malformed or invalid.", Status: http.StatusUnauthorized},
	ErrTokenExpired:         {Code: ErrTokenExpired, Message: "Token expired. Please sign in again.", Status: http.StatusUnauthorized},
	ErrInvalidCredentials:   {Code: ErrInvalidCredentials, Message: "Incorrect username or password.", Status: http.StatusUnauthorized},
	ErrSignupSessionExpired: {Code: ErrSignupSessionExpired, Message: "Your signup session has expired. Please try again.", Status: http.StatusUnauthorized},

	// 3xxx: users and profiles
	ErrInvalidUsername:        {Code: ErrInvalidUsername, Message: "Invalid username. It must be 3-30 characters and may contain letters, numbers, spaces, underscores and hyphens, but cannot start or end with a space.", Status: http.StatusBadRequest},
	ErrInvalidPassword:        {Code: ErrInvalidPassword, Message: "Invalid password. It must be between 6 and 50 characters.", Status: http.StatusBadRequest},
	ErrInvalidEmail:           {Code: ErrInvalidEmail, Message: "Invalid email address.", Status: http.StatusBadRequest},
	ErrUsernameTaken:          {Code: ErrUsernameTaken, Message: "That username is already in use.", Status: http.StatusConflict},
	ErrEmailTaken:             {Code: ErrEmailTaken, Message: "That email address is already registered.", Status: http.StatusConflict},
	ErrUserNotFound:           {Code: ErrUserNotFound, Message: "User not found.", Status: http.StatusNotFound},
	ErrCurrentPasswordInvalid: {Code: ErrCurrentPasswordInvalid, Message: "Current password is incorrect.", Status: http.StatusUnauthorized},
	ErrInvalidAvatarURL:       {Code: ErrInvalidAvatarURL, Message: "The avatar URL provided is not valid.", Status: http.StatusBadRequest},

	// 4xxx: captcha and file uploads
	ErrCaptchaMissing:   {Code: ErrCaptchaMissing, Message: "Captcha token not provided.", Status: http.StatusBadRequest},
	ErrCaptchaFailed:    {Code: ErrCaptchaFailed, Message: "We could not verify that you are human.", Status: http.StatusForbidden},
	ErrCaptchaUpstream:  {Code: ErrCaptchaUpstream, Message: "Captcha verification is temporarily unavailable.", Status: http.StatusInternalServerError},
	ErrFileTypeInvalid:  {Code: ErrFileTypeInvalid, Message: "Unsupported image type.", Status: http.StatusBadRequest},
	ErrFileSizeTooLarge: {Code: ErrFileSizeTooLarge, Message: "File is too large.", Status: http.StatusBadRequest},

	// 5xxx: internal failures
	ErrUnknown:           {Code: ErrUnknown, Message: "Something went wrong. Please try again.", Status: http.StatusInternalServerError},
	ErrConfigUnavailable: {Code: ErrConfigUnavailable, Message: "Server configuration error: this feature is not available.", Status: http.StatusInternalServerError},
}
