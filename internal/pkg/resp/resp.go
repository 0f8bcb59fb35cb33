/*
Package resp builds the standardized JSON responses returned by the HTTP edge.

Every response uses the same envelope: a business code (0 on success), a
client-safe message, and an optional data payload.
*/
package resp

import (
	"encoding/json"
	"net/http"

	"mikuchat/internal/pkg/errs"
	"mikuchat/internal/pkg/logx"
)

// JSONResponse is the envelope shared by success and error responses.
type JSONResponse struct {
	// Code is the business status code: 0 for success, an errs code otherwise.
	Code int `json:"code"`

	// Message is the client-facing status description.
	Message string `json:"message"`

	// Data carries the optional response payload.
	Data any `json:"data,omitempty"`
}

// RespondJSON serializes payload and writes it with the given HTTP status.
func RespondJSON(w http.ResponseWriter, r *http.Request, httpStatus int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("X-Content-Type-Options", "nosniff")

	body, err := json.Marshal(payload)
	if err != nil {
		logx.Error(err, "failed to encode JSON response", "http_status", httpStatus)
		http.Error(w, "Error encoding JSON response", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(httpStatus)
	w.Write(body)
}

// RespondSuccess writes a 200 envelope with the given data payload.
func RespondSuccess(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusOK, JSONResponse{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// RespondCreated writes a 201 envelope, used after resource creation.
func RespondCreated(w http.ResponseWriter, r *http.Request, data any) {
	RespondJSON(w, r, http.StatusCreated, JSONResponse{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// RespondError writes the envelope for a *errs.CustomError using its HTTP status.
func RespondError(w http.ResponseWriter, r *http.Request, customErr *errs.CustomError) {
	if customErr == nil {
		customErr = errs.NewError(errs.ErrUnknown)
	}

	RespondJSON(w, r, customErr.Status, JSONResponse{
		Code:    customErr.Code,
		Message: customErr.Message,
	})
}
