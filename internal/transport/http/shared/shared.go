// Package shared centralizes domain error translation to HTTP responses so
// every handler emits the same JSON error envelope.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "trustplane/pkg/domain-errors"
)

// ErrorResponse is the JSON envelope for every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteError maps a domain error code to an HTTP status and writes the JSON
// envelope. Unknown errors read as internal without leaking details.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)

	message := dErrors.MessageOf(err)
	if code == dErrors.CodeInternal {
		// Internal details stay in the logs.
		message = "internal error"
	}

	WriteJSON(w, toStatus(code), ErrorResponse{
		Error:   string(code),
		Message: message,
	})
}

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func toStatus(code dErrors.Code) int {
	switch code {
	case dErrors.CodeInvalidInput, dErrors.CodeBadRequest:
		return http.StatusBadRequest
	case dErrors.CodeNotFound:
		return http.StatusNotFound
	case dErrors.CodeConflict:
		return http.StatusConflict
	case dErrors.CodeUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
