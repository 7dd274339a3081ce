// Package apiclient handles all communication with the Happy Thoughts
// backend API: one typed method per route, request validation and
// sanitization before anything touches the network, and bearer-token
// attachment from the auth store.
package apiclient

import (
	"html"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/apperr"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/auth"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/dedup"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/transport"
)

type Client struct {
	transport *transport.Transport
	dedup     *dedup.Deduplicator
	auth      *auth.Store
	validate  *validator.Validate
	sanitizer *bluemonday.Policy
}

// New creates a client on top of the given transport. authStore may be nil
// for a purely anonymous client.
func New(t *transport.Transport, authStore *auth.Store) *Client {
	return &Client{
		transport: t,
		dedup:     dedup.New(),
		auth:      authStore,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		sanitizer: bluemonday.StrictPolicy(),
	}
}

// authHeader returns the Authorization header for the current session, or
// nil when anonymous.
func (c *Client) authHeader() http.Header {
	if c.auth == nil {
		return nil
	}
	token := c.auth.Token()
	if token == "" {
		return nil
	}
	return http.Header{"Authorization": []string{"Bearer " + token}}
}

// CleanMessage trims the message, strips any HTML and drops bytes that are
// not valid UTF-8 (the web client had the same hygiene for stray surrogate
// halves from emoji pickers).
func (c *Client) CleanMessage(message domain.MsgText) domain.MsgText {
	message = strings.TrimSpace(message)
	message = strings.ToValidUTF8(message, "")
	return html.UnescapeString(c.sanitizer.Sanitize(message))
}

type thoughtBody struct {
	Message domain.MsgText `json:"message" validate:"required,min=5,max=140"`
	Tags    []string       `json:"tags,omitempty"`
}

// validateMessage applies the client-side length rule. The backend remains
// the authority; this only short-circuits requests that cannot succeed.
func (c *Client) validateMessage(body *thoughtBody) error {
	if err := c.validate.Struct(body); err != nil {
		return &apperr.ValidationError{
			Field:   "message",
			Message: "message must be between 5 and 140 characters",
		}
	}
	return nil
}
