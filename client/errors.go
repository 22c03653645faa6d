package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/yeremiapane/lunchorder/utils"
)

// APIError is a non-2xx answer from the API.
type APIError struct {
	StatusCode int
	Message    string
	// Messages holds field -> messages for validation failures.
	Messages map[string][]string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error %d", e.StatusCode)
}

func (e *APIError) IsValidation() bool {
	return len(e.Messages) > 0
}

// TransportError means no usable answer came back (network, timeout, body read).
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var payload struct {
		Error    string          `json:"error"`
		Message  string          `json:"message"`
		Messages json.RawMessage `json:"messages"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		apiErr.Message = strings.TrimSpace(http.StatusText(status))
		return apiErr
	}
	apiErr.Message = payload.Error
	if apiErr.Message == "" {
		apiErr.Message = payload.Message
	}
	apiErr.Messages = decodeMessages(payload.Messages)
	return apiErr
}

// decodeMessages accepts both {"field": ["a","b"]} and {"field": "a"}.
func decodeMessages(raw json.RawMessage) map[string][]string {
	if len(raw) == 0 {
		return nil
	}
	var generic map[string]json.RawMessage
	if err := json.Unmarshal(raw, &generic); err != nil || len(generic) == 0 {
		return nil
	}
	out := make(map[string][]string, len(generic))
	for field, v := range generic {
		var list []string
		if err := json.Unmarshal(v, &list); err == nil {
			out[field] = list
			continue
		}
		var single string
		if err := json.Unmarshal(v, &single); err == nil {
			out[field] = []string{single}
			continue
		}
		out[field] = []string{strings.TrimSpace(string(v))}
	}
	return out
}

// DisplayMessage turns err into a single user-facing string: joined field
// messages for validation failures, the server's error text when present,
// fallback otherwise (including network failures).
func DisplayMessage(err error, fallback string) string {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return fallback
	}
	if apiErr.IsValidation() {
		return utils.JoinValidationMessages(apiErr.Messages)
	}
	if apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}

func IsUnauthorized(err error) bool {
	return IsStatus(err, http.StatusUnauthorized)
}

func IsNotFound(err error) bool {
	return IsStatus(err, http.StatusNotFound)
}
