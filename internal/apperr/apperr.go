// Package apperr defines the error taxonomy shared by the transport and the
// stores. Callers decide between automatic retry, manual-retry affordances
// and terminal failures based on these types alone.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError is a network-level failure: connection refused, DNS error
// or a per-attempt timeout. The transport retries these automatically; if it
// gives up, the last cause is carried in Err.
type TransportError struct {
	Op  string // "GET /thoughts" style description of the attempted call
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx response that the transport will not retry any
// further. Body holds the raw response body so callers can surface backend
// validation text verbatim.
type StatusError struct {
	Status int
	Body   string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Body)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

// ValidationError is a client-side rejection that never reaches the network.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NormalizationError marks a backend payload whose shape could not be
// recognized. The normalizer itself never returns it; it is raised by
// callers that required data the degraded result could not provide.
type NormalizationError struct {
	Message string
}

func (e *NormalizationError) Error() string {
	return e.Message
}

var (
	// ErrTokenInvalid covers malformed or rejected bearer tokens (401).
	ErrTokenInvalid = errors.New("token invalid or expired, please log in again")
	// ErrNotOwner is returned when the backend refuses a mutation with 403.
	ErrNotOwner = errors.New("you can only modify your own thoughts")
)

// Retryable reports whether a manual retry could plausibly succeed:
// exhausted transport failures and 5xx responses qualify, client errors do
// not.
func Retryable(err error) bool {
	var te *TransportError
	if errors.As(err, &te) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status >= 500
	}
	return false
}

// Status extracts the HTTP status from err, or 0 if err carries none.
func Status(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	return Status(err) == code
}

// UserMessage maps err to a message fit for a notification banner,
// preferring backend-provided text over generic status phrasing.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var se *StatusError
	if errors.As(err, &se) {
		if se.Body != "" {
			return se.Body
		}
		return http.StatusText(se.Status)
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "could not reach the server, please try again"
	}
	return err.Error()
}
