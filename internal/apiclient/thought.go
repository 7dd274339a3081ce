package apiclient

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/apperr"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/dedup"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/normalize"
)

// GetThoughts fetches one page of the feed and returns the normalized
// result.
func (c *Client) GetThoughts(ctx context.Context, page, limit int) (normalize.Result, error) {
	path := fmt.Sprintf("/thoughts?page=%d&limit=%d", page, limit)
	raw, err := c.transport.Request(ctx, "GET", path, nil, c.authHeader())
	if err != nil {
		return normalize.Result{}, err
	}
	return normalize.Normalize(raw), nil
}

// PostThought creates a new thought. Concurrent identical submissions
// (a double-clicked submit button) collapse into one request; distinct
// messages never share a key, so no create is ever dropped.
func (c *Client) PostThought(ctx context.Context, message domain.MsgText) (*domain.Thought, error) {
	body := &thoughtBody{Message: c.CleanMessage(message)}
	if err := c.validateMessage(body); err != nil {
		return nil, err
	}
	body.Tags = domain.DeriveTags(body.Message, nil)

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal thought: %w", err)
	}

	raw, err := c.dedup.Do(postKey(body.Message), func() ([]byte, error) {
		return c.transport.Request(ctx, "POST", "/thoughts", jsonBody, c.authHeader())
	})
	if err != nil {
		return nil, err
	}
	return singleThought(raw, "created thought")
}

// UpdateThought replaces the message of an existing thought. Requires
// authentication; a 401 is surfaced unchanged so the store can clear the
// session.
func (c *Client) UpdateThought(ctx context.Context, id domain.ThoughtId, message domain.MsgText) (*domain.Thought, error) {
	body := &thoughtBody{Message: c.CleanMessage(message)}
	if err := c.validateMessage(body); err != nil {
		return nil, err
	}
	body.Tags = domain.DeriveTags(body.Message, nil)

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal thought: %w", err)
	}

	raw, err := c.transport.Request(ctx, "PUT", "/thoughts/"+id, jsonBody, c.authHeader())
	if err != nil {
		return nil, err
	}
	return singleThought(raw, "updated thought")
}

// DeleteThought removes a thought. Status handling (404 as already-deleted)
// is the caller's decision.
func (c *Client) DeleteThought(ctx context.Context, id domain.ThoughtId) error {
	_, err := c.transport.Request(ctx, "DELETE", "/thoughts/"+id, nil, c.authHeader())
	return err
}

// LikeThought toggles the heart on a thought. action is "like" or "unlike",
// derived from the new optimistic state. Duplicate clicks on the same
// thought share one in-flight request.
func (c *Client) LikeThought(ctx context.Context, id domain.ThoughtId, action string) (*domain.Thought, error) {
	jsonBody, err := json.Marshal(map[string]string{"action": action})
	if err != nil {
		return nil, fmt.Errorf("marshal like: %w", err)
	}

	raw, err := c.dedup.Do(dedup.Key("like", id), func() ([]byte, error) {
		return c.transport.Request(ctx, "POST", "/thoughts/"+id+"/like", jsonBody, c.authHeader())
	})
	if err != nil {
		return nil, err
	}

	res := normalize.Normalize(raw)
	if !res.Success {
		return nil, &apperr.NormalizationError{Message: res.Message}
	}
	// Some backend versions return only an acknowledgement; the caller then
	// keeps its optimistic count.
	return res.Thought, nil
}

// postKey discriminates creates by content digest, not the raw text: the
// deduper is per-client, so the digest only ever compares this client's own
// submissions against each other.
func postKey(message domain.MsgText) string {
	sum := sha256.Sum256([]byte(message))
	return dedup.Key("post", hex.EncodeToString(sum[:]))
}

// singleThought extracts the one thought a mutating call must return.
func singleThought(raw []byte, what string) (*domain.Thought, error) {
	res := normalize.Normalize(raw)
	if !res.Success {
		msg := res.Message
		if msg == "" {
			msg = "backend rejected the request"
		}
		return nil, &apperr.NormalizationError{Message: msg}
	}
	if res.Thought == nil {
		return nil, &apperr.NormalizationError{Message: "backend response carried no " + what}
	}
	return res.Thought, nil
}
