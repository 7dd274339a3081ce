// Package transport is the single HTTP client for the backend API. Every
// request gets a per-attempt timeout, automatic retries with exponential
// backoff and jitter for failures that can heal (network errors, timeouts,
// 5xx), and immediate surfacing of client errors (4xx).
package transport

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/apperr"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/logger"
)

const (
	DefaultTimeout    = 20 * time.Second
	DefaultMaxRetries = 3
	DefaultBackoffCap = 10 * time.Second

	// Retries for one user action never run longer than this in total.
	maxElapsed = 90 * time.Second

	initialBackoff = 500 * time.Millisecond
)

type Transport struct {
	BaseURL        string
	Client         *http.Client
	Timeout        time.Duration
	MaxRetries     int
	BackoffCap     time.Duration
	InitialBackoff time.Duration
}

// New creates a transport for the given backend base URL with the default
// timeout and retry policy. Fields can be adjusted before first use.
func New(baseURL string) *Transport {
	return &Transport{
		BaseURL:        baseURL,
		Client:         &http.Client{},
		Timeout:        DefaultTimeout,
		MaxRetries:     DefaultMaxRetries,
		BackoffCap:     DefaultBackoffCap,
		InitialBackoff: initialBackoff,
	}
}

// Request performs method on path (relative to BaseURL), retrying per the
// policy above, and returns the raw response body of the final attempt.
// Terminal non-2xx responses come back as *apperr.StatusError; exhausted
// network failures as *apperr.TransportError.
func (t *Transport) Request(ctx context.Context, method, path string, body []byte, header http.Header) ([]byte, error) {
	op := method + " " + path
	var respBody []byte

	// A zero or negative MaxRetries would wrap the unsigned retry budget
	// below; treat it as "one attempt, no retries".
	maxRetries := t.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}

	attempt := 0
	operation := func() error {
		attempt++
		var err error
		respBody, err = t.attempt(ctx, method, path, body, header)
		if err == nil {
			return nil
		}

		var se *apperr.StatusError
		if errors.As(err, &se) && se.Status < 500 {
			// Client errors are terminal, never retried.
			return backoff.Permanent(err)
		}
		if attempt < maxRetries {
			retriesTotal.WithLabelValues(method).Inc()
			logger.Log.Warn("request attempt failed, will retry",
				"op", op, "attempt", attempt, "error", err)
		}
		return err
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = t.InitialBackoff
	if policy.InitialInterval <= 0 {
		policy.InitialInterval = initialBackoff
	}
	policy.MaxInterval = t.BackoffCap
	policy.MaxElapsedTime = maxElapsed

	err := backoff.Retry(operation, backoff.WithContext(
		backoff.WithMaxRetries(policy, uint64(maxRetries-1)), ctx))
	if err != nil {
		var se *apperr.StatusError
		var te *apperr.TransportError
		if errors.As(err, &se) || errors.As(err, &te) {
			return nil, err
		}
		// Context cancellation or another non-HTTP cause.
		return nil, &apperr.TransportError{Op: op, Err: err}
	}
	return respBody, nil
}

// attempt issues a single HTTP call with its own timeout and classifies the
// outcome.
func (t *Transport) attempt(ctx context.Context, method, path string, body []byte, header http.Header) ([]byte, error) {
	op := method + " " + path
	start := time.Now()

	attemptCtx, cancel := context.WithTimeout(ctx, t.Timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(attemptCtx, method, t.BaseURL+path, reader)
	if err != nil {
		return nil, &apperr.TransportError{Op: op, Err: fmt.Errorf("build request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	for key, values := range header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}

	resp, err := t.Client.Do(req)
	if err != nil {
		requestsTotal.WithLabelValues(method, "network_error").Inc()
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, &apperr.TransportError{Op: op, Err: fmt.Errorf("timed out after %s: %w", t.Timeout, err)}
		}
		return nil, &apperr.TransportError{Op: op, Err: fmt.Errorf("backend unavailable: %w", err)}
	}
	defer resp.Body.Close()

	requestDuration.WithLabelValues(method).Observe(time.Since(start).Seconds())
	requestsTotal.WithLabelValues(method, strconv.Itoa(resp.StatusCode)).Inc()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &apperr.TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &apperr.StatusError{Status: resp.StatusCode, Body: string(raw)}
	}
	return raw, nil
}
