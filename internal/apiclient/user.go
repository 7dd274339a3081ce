package apiclient

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/apperr"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/normalize"
)

// AuthResult is the backend's answer to login and signup.
type AuthResult struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Message string `json:"message"`
	User    struct {
		Id       string `json:"_id"`
		Username string `json:"username"`
	} `json:"user"`
}

// Login exchanges credentials for a bearer token.
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*AuthResult, error) {
	return c.authRequest(ctx, "/users/login", creds)
}

// Signup registers a new account; validation errors from the backend are
// surfaced verbatim in the returned error.
func (c *Client) Signup(ctx context.Context, creds domain.Credentials) (*AuthResult, error) {
	return c.authRequest(ctx, "/users/signup", creds)
}

func (c *Client) authRequest(ctx context.Context, path string, creds domain.Credentials) (*AuthResult, error) {
	if err := c.validate.Struct(creds); err != nil {
		return nil, &apperr.ValidationError{
			Field:   "credentials",
			Message: "username and password are required",
		}
	}

	jsonBody, err := json.Marshal(creds)
	if err != nil {
		return nil, fmt.Errorf("marshal credentials: %w", err)
	}

	raw, err := c.transport.Request(ctx, "POST", path, jsonBody, nil)
	if err != nil {
		return nil, err
	}

	var result AuthResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, &apperr.NormalizationError{Message: "unrecognized auth response"}
	}
	if !result.Success || result.Token == "" {
		msg := result.Message
		if msg == "" {
			msg = "authentication failed"
		}
		return nil, &apperr.ValidationError{Field: "credentials", Message: msg}
	}
	return &result, nil
}

// LikedThoughts returns the thoughts the authenticated viewer has liked, so
// the liked state is server-confirmed after login.
func (c *Client) LikedThoughts(ctx context.Context) ([]domain.Thought, error) {
	raw, err := c.transport.Request(ctx, "GET", "/users/liked-thoughts", nil, c.authHeader())
	if err != nil {
		return nil, err
	}
	res := normalize.Normalize(raw)
	if !res.Success {
		return nil, &apperr.NormalizationError{Message: res.Message}
	}
	return res.Data, nil
}

// Health probes the backend liveness endpoint. Used only to detect a
// cold-starting backend.
func (c *Client) Health(ctx context.Context) error {
	_, err := c.transport.Request(ctx, "GET", "/health", nil, nil)
	return err
}
