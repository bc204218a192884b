package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"taskspace/internal/apperr"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("invalid JSON: multiple JSON values")
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, title, message string) {
	writeJSON(w, status, errorResponse{Error: title, Message: message})
}

// writeServiceError maps the service error taxonomy to HTTP status codes.
// Unexpected errors are logged and surfaced as a generic 500 with the
// store's message suppressed.
func (s *Server) writeServiceError(w http.ResponseWriter, err error) {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		status := http.StatusInternalServerError
		switch ae.Kind {
		case apperr.KindNotFound:
			status = http.StatusNotFound
		case apperr.KindInvalidInput, apperr.KindInvalidState:
			status = http.StatusBadRequest
		case apperr.KindConflict:
			status = http.StatusConflict
		case apperr.KindUnauthenticated:
			status = http.StatusUnauthorized
		}
		writeError(w, status, ae.Title, ae.Message)
		return
	}

	s.logger.Printf("internal error: %v", err)
	writeError(w, http.StatusInternalServerError, "Internal error", "internal error")
}
