// Package normalize maps the backend's heterogeneous response envelopes
// into one canonical result. The API has shipped several shapes over time:
//
//	{success, response: {thoughts: [...], pagination: {current, pages, total}}}
//	{success, response: [...]}
//	{success, data: [...], totalPages}
//	[...]                                   (bare array)
//	{success, response: {...single thought}}
//
// Normalize recognizes all of them, degrades gracefully on anything else,
// and never fails: an unrecognized shape yields Success=false with a
// diagnostic message and a best-effort extraction of any array payload.
package normalize

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/LindaSchonfeldt/happy-thoughts-client/internal/domain"
)

// Result is the canonical envelope every caller consumes.
type Result struct {
	Success    bool
	Data       []domain.Thought
	Thought    *domain.Thought // set when the payload was a single object
	TotalPages int
	Message    string
}

type pagination struct {
	Current int `json:"current"`
	Pages   int `json:"pages"`
	Total   int `json:"total"`
}

type envelope struct {
	Success    *bool           `json:"success"`
	Message    string          `json:"message"`
	Response   json.RawMessage `json:"response"`
	Data       json.RawMessage `json:"data"`
	TotalPages int             `json:"totalPages"`
}

type listPayload struct {
	Thoughts   []rawThought `json:"thoughts"`
	Pagination *pagination  `json:"pagination"`
}

// Normalize converts a raw response body into a Result. It is a pure
// function and never returns an error.
func Normalize(raw []byte) Result {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Result{Success: true, TotalPages: 1}
	}

	// Bare array at the top level.
	if trimmed[0] == '[' {
		var items []rawThought
		if err := json.Unmarshal(trimmed, &items); err == nil {
			return Result{Success: true, Data: toDomain(items), TotalPages: 1}
		}
		return degraded(trimmed, "top-level array with unrecognized elements")
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return degraded(trimmed, "response is not valid JSON object")
	}

	success := env.Success == nil || *env.Success

	payload := env.Response
	if payload == nil {
		payload = env.Data
	}
	if payload == nil {
		if env.Success == nil {
			// No success marker and no recognized payload key at all.
			return degraded(trimmed, "unrecognized response envelope")
		}
		// Envelope with no payload, e.g. a delete acknowledgement.
		return Result{Success: success, TotalPages: 1, Message: env.Message}
	}

	// response/data as {thoughts, pagination}.
	var list listPayload
	if err := json.Unmarshal(payload, &list); err == nil && list.Thoughts != nil {
		pages := 1
		if list.Pagination != nil && list.Pagination.Pages > 0 {
			pages = list.Pagination.Pages
		} else if env.TotalPages > 0 {
			pages = env.TotalPages
		}
		return Result{Success: success, Data: toDomain(list.Thoughts), TotalPages: pages, Message: env.Message}
	}

	// response/data as a plain array.
	var items []rawThought
	if err := json.Unmarshal(payload, &items); err == nil {
		pages := 1
		if env.TotalPages > 0 {
			pages = env.TotalPages
		}
		return Result{Success: success, Data: toDomain(items), TotalPages: pages, Message: env.Message}
	}

	// response/data as a single thought object.
	var single rawThought
	if err := json.Unmarshal(payload, &single); err == nil && single.id() != "" {
		t := single.toDomain()
		return Result{Success: success, Thought: &t, TotalPages: 1, Message: env.Message}
	}

	return degraded(trimmed, "unrecognized response payload shape")
}

// degraded digs through the body for anything array-like so the feed can at
// least render, and flags the result as unsuccessful with a diagnostic.
func degraded(raw []byte, diag string) Result {
	res := Result{Success: false, TotalPages: 1, Message: diag}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return res
	}
	for _, v := range obj {
		var items []rawThought
		if err := json.Unmarshal(v, &items); err == nil && len(items) > 0 {
			res.Data = toDomain(items)
			return res
		}
		// One level of nesting, e.g. {response: {posts: [...]}}.
		var nested map[string]json.RawMessage
		if err := json.Unmarshal(v, &nested); err == nil {
			for _, nv := range nested {
				if err := json.Unmarshal(nv, &items); err == nil && len(items) > 0 {
					res.Data = toDomain(items)
					return res
				}
			}
		}
	}
	return res
}

// rawThought tolerates every field alias the backend has used.
type rawThought struct {
	MongoId    string          `json:"_id"`
	PlainId    string          `json:"id"`
	Message    string          `json:"message"`
	Hearts     int             `json:"hearts"`
	CreatedAt  time.Time       `json:"createdAt"`
	Tags       []string        `json:"tags"`
	ThemeTags  []string        `json:"themeTags"`
	UserId     string          `json:"userId"`
	AuthorId   string          `json:"authorId"`
	Username   string          `json:"username"`
	AuthorName string          `json:"authorName"`
	User       json.RawMessage `json:"user"`
}

func (r *rawThought) id() string {
	if r.MongoId != "" {
		return r.MongoId
	}
	return r.PlainId
}

func (r *rawThought) toDomain() domain.Thought {
	authorId := r.AuthorId
	if authorId == "" {
		authorId = r.UserId
	}
	authorName := r.AuthorName
	if authorName == "" {
		authorName = r.Username
	}
	// "user" may be a plain id string or an embedded {_id, username} object.
	if len(r.User) > 0 {
		var id string
		if err := json.Unmarshal(r.User, &id); err == nil {
			if authorId == "" {
				authorId = id
			}
		} else {
			var u struct {
				Id       string `json:"_id"`
				Username string `json:"username"`
			}
			if err := json.Unmarshal(r.User, &u); err == nil {
				if authorId == "" {
					authorId = u.Id
				}
				if authorName == "" {
					authorName = u.Username
				}
			}
		}
	}

	tags := r.Tags
	if len(r.ThemeTags) > 0 {
		tags = r.ThemeTags
	}
	if r.Hearts < 0 {
		r.Hearts = 0
	}
	return domain.Thought{
		Id:         r.id(),
		Message:    r.Message,
		Tags:       domain.DeriveTags(r.Message, tags),
		Hearts:     r.Hearts,
		CreatedAt:  r.CreatedAt,
		AuthorId:   authorId,
		AuthorName: authorName,
	}
}

func toDomain(items []rawThought) []domain.Thought {
	out := make([]domain.Thought, 0, len(items))
	for i := range items {
		out = append(out, items[i].toDomain())
	}
	return out
}
