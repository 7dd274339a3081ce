package domain

import "time"

type (
	ThoughtId = string
	UserId    = string
	Username  = string
	Password  = string
	MsgText   = string
)

// Thought is a single feed entry. IsOwn is derived client-side and is never
// taken from the backend verbatim: identity can change (login/logout)
// without a re-fetch, so it is recomputed against the live session whenever
// either side changes.
type Thought struct {
	Id         ThoughtId `json:"_id"`
	Message    MsgText   `json:"message"`
	Tags       []string  `json:"tags,omitempty"`
	Hearts     int       `json:"hearts"`
	CreatedAt  time.Time `json:"createdAt"`
	AuthorId   UserId    `json:"authorId,omitempty"`
	AuthorName string    `json:"authorName,omitempty"`
	IsOwn      bool      `json:"-"`
}

// Anonymous reports whether the thought was posted without an account.
func (t *Thought) Anonymous() bool {
	return t.AuthorId == ""
}

// DisplayName returns the author name to render, defaulting to "Anonymous".
func (t *Thought) DisplayName() string {
	if t.AuthorName == "" {
		return "Anonymous"
	}
	return t.AuthorName
}

// CanEdit is the single ownership rule: the viewer must be authenticated,
// the thought must have an author, and the two must match. Anonymous
// thoughts are editable by no one.
func (t *Thought) CanEdit(currentUserId UserId) bool {
	return currentUserId != "" && t.AuthorId != "" && t.AuthorId == currentUserId
}

// Page is one fetched slice of the feed.
type Page struct {
	Items      []Thought
	PageNumber int
	TotalPages int
}

// Session is the identity decoded from the current bearer token. Owned by
// the auth store; everyone else reads snapshots.
type Session struct {
	UserId    UserId
	Username  Username
	ExpiresAt time.Time
}

// Expired reports whether the session's token lifetime has passed. A zero
// ExpiresAt means the token carried no exp claim and never expires
// client-side.
func (s *Session) Expired() bool {
	return !s.ExpiresAt.IsZero() && s.ExpiresAt.Before(time.Now())
}

type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
)

// Notification is a transient banner event emitted by mutating operations.
type Notification struct {
	Id      string
	Type    NotificationType
	Message string
}

// Credentials is the login/signup request body.
type Credentials struct {
	Username Username `json:"username" validate:"required,min=2,max=30"`
	Password Password `json:"password" validate:"required,min=6"`
}
