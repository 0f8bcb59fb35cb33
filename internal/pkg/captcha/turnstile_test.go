package captcha

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"mikuchat/internal/pkg/errs"
)

func TestVerify_Success(t *testing.T) {
	t.Parallel()

	var gotSecret, gotResponse, gotRemoteIP string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		gotSecret = r.PostFormValue("secret")
		gotResponse = r.PostFormValue("response")
		gotRemoteIP = r.PostFormValue("remoteip")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	v := NewVerifier("secret-key", WithVerifyURL(srv.URL))

	if customErr := v.Verify(context.Background(), "client-token", "203.0.113.9"); customErr != nil {
		t.Fatalf("Verify returned %v, want nil", customErr)
	}
	if gotSecret != "secret-key" || gotResponse != "client-token" || gotRemoteIP != "203.0.113.9" {
		t.Errorf("form values: secret=%q response=%q remoteip=%q", gotSecret, gotResponse, gotRemoteIP)
	}
}

func TestVerify_Rejected(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":false,"error-codes":["invalid-input-response"]}`))
	}))
	defer srv.Close()

	v := NewVerifier("secret-key", WithVerifyURL(srv.URL))

	customErr := v.Verify(context.Background(), "bad-token", "")
	if customErr == nil || customErr.Code != errs.ErrCaptchaFailed {
		t.Fatalf("expected ErrCaptchaFailed, got %v", customErr)
	}
}

func TestVerify_Unreachable(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	v := NewVerifier("secret-key", WithVerifyURL(srv.URL))

	customErr := v.Verify(context.Background(), "token", "")
	if customErr == nil || customErr.Code != errs.ErrCaptchaUpstream {
		t.Fatalf("expected ErrCaptchaUpstream, got %v", customErr)
	}
}

func TestVerify_MalformedAnswer(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not json"))
	}))
	defer srv.Close()

	v := NewVerifier("secret-key", WithVerifyURL(srv.URL))

	customErr := v.Verify(context.Background(), "token", "")
	if customErr == nil || customErr.Code != errs.ErrCaptchaUpstream {
		t.Fatalf("expected ErrCaptchaUpstream, got %v", customErr)
	}
}
