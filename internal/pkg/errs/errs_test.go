package errs

import (
	"net/http"
	"testing"
)

func TestNewError_KnownCode(t *testing.T) {
	t.Parallel()

	e := NewError(ErrUsernameTaken)
	if e.Code != ErrUsernameTaken || e.Status != http.StatusConflict || e.Message == "" {
		t.Fatalf("unexpected error: %+v", e)
	}
}

func TestNewError_UnknownCodeFallsBack(t *testing.T) {
	t.Parallel()

	e := NewError(99999)
	if e.Code != ErrUnknown || e.Status != http.StatusInternalServerError {
		t.Fatalf("unexpected fallback: %+v", e)
	}
}

func TestErrorMapComplete(t *testing.T) {
	t.Parallel()

	codes := []int{
		ErrInvalidParams, ErrUnsupportedMediaType, ErrInvalidJSONFormat, ErrExtraContentInBody, ErrRouteNotFound,
		ErrUnauthorized, ErrTokenMissing, ErrTokenInvalid, ErrTokenExpired, ErrInvalidCredentials, ErrSignupSessionExpired,
		ErrInvalidUsername, ErrInvalidPassword, ErrInvalidEmail, ErrUsernameTaken, ErrEmailTaken,
		ErrUserNotFound, ErrCurrentPasswordInvalid, ErrInvalidAvatarURL,
		ErrCaptchaMissing, ErrCaptchaFailed, ErrCaptchaUpstream, ErrFileTypeInvalid, ErrFileSizeTooLarge,
		ErrUnknown, ErrConfigUnavailable,
	}

	for _, code := range codes {
		e := NewError(code)
		if e.Code != code {
			t.Errorf("code %d missing from the error map", code)
		}
		if e.Message == "" || e.Status == 0 {
			t.Errorf("code %d has an incomplete definition: %+v", code, e)
		}
	}
}
