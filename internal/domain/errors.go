package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound     = errors.New("hotel api: not found")
	ErrUnauthorized = errors.New("hotel api: unauthorized")
	ErrForbidden    = errors.New("hotel api: forbidden")
)

// APIError is a non-2xx answer from the hotel API.
type APIError struct {
	Status  int
	Message string
	// Detail is the structured error body when the server sent JSON.
	Detail json.RawMessage
	// Body is the raw (truncated) body when it was not JSON.
	Body string
}

func NewAPIError(status int, body []byte) *APIError {
	e := &APIError{
		Status:  status,
		Message: fmt.Sprintf("request failed with status code %d", status),
	}
	if len(body) > 0 {
		if json.Valid(body) {
			e.Detail = json.RawMessage(body)
		} else {
			e.Body = string(body)
		}
	}
	return e
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error {
	switch e.Status {
	case http.StatusNotFound:
		return ErrNotFound
	case http.StatusUnauthorized:
		return ErrUnauthorized
	case http.StatusForbidden:
		return ErrForbidden
	}
	return nil
}
