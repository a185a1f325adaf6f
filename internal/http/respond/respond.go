package respond

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hongminglow/feedback-hub/internal/apperr"
)

// Envelope is the error body shared by every non-2xx response.
type Envelope struct {
	Code    int               `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// JSON writes payload as the response body.
func JSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Default().Error("respond: encode payload failed", slog.Any("error", err))
	}
}

// Status writes an error envelope with an explicit status and message.
func Status(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Code: status, Message: message})
}

// Error maps err to its status code. Internal errors only ever expose the
// generic message; callers log the cause.
func Error(w http.ResponseWriter, err error) {
	kind := apperr.KindOf(err)
	status := kind.HTTPStatus()
	if kind == apperr.KindInternal {
		Status(w, status, apperr.InternalMessage)
		return
	}
	var appErr *apperr.Error
	errors.As(err, &appErr)
	JSON(w, status, Envelope{Code: status, Message: appErr.Message, Details: appErr.Details})
}
