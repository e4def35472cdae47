// Package httpext classifies HTTP failures exchanged with the CRM backend.
package httpext

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"
)

// APIError is a non-success HTTP response translated into an error. The
// message is extracted from the response body, in order of preference, from a
// JSON error body's "detail" field, then its "message" field, then the raw
// JSON, then the HTTP status text.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorFromResponse builds an APIError from a non-success response. It
// consumes the response body.
func ErrorFromResponse(resp *http.Response) *APIError {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Message:    statusMessage(resp.StatusCode),
	}

	ct := resp.Header.Get("Content-Type")
	if !strings.Contains(ct, "application/json") {
		return apiErr
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}

	if fields, ok := payload.(map[string]any); ok {
		if detail, ok := fields["detail"].(string); ok && detail != "" {
			apiErr.Message = detail
			return apiErr
		}
		if message, ok := fields["message"].(string); ok && message != "" {
			apiErr.Message = message
			return apiErr
		}
	}
	apiErr.Message = strings.TrimSpace(string(body))
	return apiErr
}

func statusMessage(code int) string {
	if text := http.StatusText(code); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP error! status: %d", code)
}

// ErrorResponse is the standardised JSON error body written by the stub
// server, matching the backend's DRF-style shape.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// JsonError writes a JSON error response with the specified status code
func JsonError(w http.ResponseWriter, message string, code int) {
	response := ErrorResponse{
		Detail: message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Error().Err(err).Msg("Failed to encode error response")
		http.Error(w, "{\"detail\":\"Internal Server Error\"}", http.StatusInternalServerError)
		return
	}
}
