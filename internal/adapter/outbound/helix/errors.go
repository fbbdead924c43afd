package helix

import (
	"encoding/json"
	"fmt"
	"net/http"

	sharederrors "github.com/uniedit/apiclient/internal/shared/errors"
)

// APIError is a non-2xx response from the remote API.
type APIError struct {
	StatusCode int
	Message    string
	Err        error
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api error %d", e.StatusCode)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Unwrap returns the sentinel matching the status code.
func (e *APIError) Unwrap() error {
	return e.Err
}

// newAPIError translates a failed response into an APIError.
func newAPIError(status int, body []byte) *APIError {
	var payload struct {
		Error   string `json:"error"`
		Status  int    `json:"status"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(body, &payload)

	msg := payload.Message
	if msg == "" {
		msg = payload.Error
	}

	return &APIError{
		StatusCode: status,
		Message:    msg,
		Err:        sentinelFor(status),
	}
}

func sentinelFor(status int) error {
	switch {
	case status == http.StatusBadRequest:
		return sharederrors.ErrBadRequest
	case status == http.StatusUnauthorized:
		return sharederrors.ErrUnauthorized
	case status == http.StatusNotFound:
		return sharederrors.ErrNotFound
	case status == http.StatusTooManyRequests:
		return sharederrors.ErrRateLimited
	default:
		return sharederrors.ErrUpstream
	}
}
