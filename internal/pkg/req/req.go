/*
Package req contains helpers for binding HTTP request bodies.
*/
package req

import (
	"encoding/json"
	"net/http"
	"strings"

	"mikuchat/internal/pkg/errs"
)

// MaxJSONBodySize bounds JSON request bodies. Profile and auth payloads are
// small; anything past this is hostile or broken.
const MaxJSONBodySize int64 = 1 << 20 // 1 MB

// BindJSON decodes the request body into dst. It requires an application/json
// Content-Type, rejects unknown fields, and rejects trailing content.
func BindJSON(w http.ResponseWriter, r *http.Request, dst any) *errs.CustomError {
	contentType := r.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "application/json") {
		return errs.NewError(errs.ErrUnsupportedMediaType)
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxJSONBodySize)

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(dst); err != nil {
		return errs.NewError(errs.ErrInvalidJSONFormat)
	}

	if decoder.More() {
		return errs.NewError(errs.ErrExtraContentInBody)
	}

	return nil
}
