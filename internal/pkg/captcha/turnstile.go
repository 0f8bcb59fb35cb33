/*
Package captcha verifies Cloudflare Turnstile tokens against the siteverify
service. The verification itself is delegated entirely to Cloudflare; this
package only shuttles the token and classifies the answer.
*/
package captcha

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"mikuchat/internal/pkg/errs"
	"mikuchat/internal/pkg/logx"
)

// DefaultVerifyURL is Cloudflare's siteverify endpoint.
const DefaultVerifyURL = "https://challenges.cloudflare.com/turnstile/v0/siteverify"

// Verifier checks Turnstile tokens with a configured secret key.
type Verifier struct {
	secretKey string
	verifyURL string
	client    *http.Client
}

// Option adjusts a Verifier; used by tests to point at a fake endpoint.
type Option func(*Verifier)

// WithVerifyURL overrides the siteverify endpoint.
func WithVerifyURL(u string) Option {
	return func(v *Verifier) { v.verifyURL = u }
}

// NewVerifier builds a Verifier for the given secret key.
func NewVerifier(secretKey string, opts ...Option) *Verifier {
	v := &Verifier{
		secretKey: secretKey,
		verifyURL: DefaultVerifyURL,
		client:    &http.Client{Timeout: 10 * time.Second},
	}

	for _, opt := range opts {
		opt(v)
	}

	return v
}

// Verify checks the client-supplied token. It returns nil when Cloudflare
// confirms the token, ErrCaptchaFailed when it rejects it, and
// ErrCaptchaUpstream when the service cannot be reached.
func (v *Verifier) Verify(ctx context.Context, token, remoteIP string) *errs.CustomError {
	form := url.Values{}
	form.Set("secret", v.secretKey)
	form.Set("response", token)
	if remoteIP != "" {
		form.Set("remoteip", remoteIP)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.verifyURL, strings.NewReader(form.Encode()))
	if err != nil {
		logx.Error(err, "failed to build captcha verification request")
		return errs.NewError(errs.ErrCaptchaUpstream)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := v.client.Do(req)
	if err != nil {
		logx.Error(err, "captcha verification request failed")
		return errs.NewError(errs.ErrCaptchaUpstream)
	}
	defer resp.Body.Close()

	var result struct {
		Success    bool     `json:"success"`
		ErrorCodes []string `json:"error-codes"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		logx.Error(err, "failed to decode captcha verification response")
		return errs.NewError(errs.ErrCaptchaUpstream)
	}

	if !result.Success {
		logx.Warn("captcha verification rejected", "error_codes", fmt.Sprintf("%v", result.ErrorCodes))
		return errs.NewError(errs.ErrCaptchaFailed)
	}

	return nil
}
