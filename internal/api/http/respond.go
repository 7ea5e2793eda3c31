package http

import (
	"encoding/json"
	"net/http"

	"alugaai-backend/internal/apperr"
	"alugaai-backend/internal/logger"
)

type errorBody struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    apperr.Code `json:"code"`
	Message string      `json:"message"`
	Details any         `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warn("Failed to write response", "error", err)
	}
}

// writeError renders err with the HTTP status of its apperr code.
func writeError(w http.ResponseWriter, err error) {
	code := apperr.CodeOf(err)
	meta := apperr.MetadataFor(code)

	payload := errorPayload{Code: code, Message: meta.PublicMessage}
	if appErr := apperr.As(err); appErr != nil && code != apperr.CodeInternal && code != apperr.CodeBackend {
		payload.Message = appErr.Message()
		if meta.DetailsAllowed {
			payload.Details = appErr.Details()
		}
	} else {
		logger.Error("Request failed", "code", code, "error", err)
	}
	writeJSON(w, meta.HTTPStatus, errorBody{Error: payload})
}
