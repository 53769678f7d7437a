package domain

import (
	"context"
	"time"
)

// SessionStatus is the lifecycle state of a wellness session.
// Only the two values below are ever persisted; both write operations force
// the status they produce instead of trusting caller input.
type SessionStatus string

const (
	StatusDraft     SessionStatus = "draft"
	StatusPublished SessionStatus = "published"
)

// Valid reports whether s is one of the permitted status values.
func (s SessionStatus) Valid() bool {
	return s == StatusDraft || s == StatusPublished
}

// Session is a unit of wellness content authored by one user. The session
// body itself lives outside this system; JSONFileURL points at it.
//
// OwnerID and OwnerEmail identify the same owner: the relational backend
// fills both (via join), the document backend stores only the email and
// leaves OwnerID zero. Ownership is fixed at creation and never transferred.
// CreatedAt is immutable; UpdatedAt advances on every successful write.
type Session struct {
	ID          int64
	OwnerID     int64
	OwnerEmail  string
	Title       string
	Tags        []string
	JSONFileURL string
	Status      SessionStatus
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// OwnerRef is the serialized owner reference inside a session document.
// ID is omitted for the document backend, which does not keep one.
type OwnerRef struct {
	ID    int64  `json:"id,omitempty"`
	Email string `json:"email"`
}

// SessionView is the wire representation of a Session.
type SessionView struct {
	ID          int64         `json:"id"`
	User        OwnerRef      `json:"user"`
	Title       string        `json:"title"`
	Tags        []string      `json:"tags"`
	JSONFileURL string        `json:"json_file_url"`
	Status      SessionStatus `json:"status"`
	CreatedAt   time.Time     `json:"created_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
}

// View converts a Session to its wire representation. Tags is never null in
// the output.
func (s *Session) View() SessionView {
	tags := s.Tags
	if tags == nil {
		tags = []string{}
	}
	return SessionView{
		ID:          s.ID,
		User:        OwnerRef{ID: s.OwnerID, Email: s.OwnerEmail},
		Title:       s.Title,
		Tags:        tags,
		JSONFileURL: s.JSONFileURL,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// SessionViews converts a slice of sessions for serialization.
func SessionViews(sessions []Session) []SessionView {
	views := make([]SessionView, 0, len(sessions))
	for i := range sessions {
		views = append(views, sessions[i].View())
	}
	return views
}

// SessionInput is the payload for save-draft and publish. Pointer fields
// distinguish "absent" from "empty" so partial updates only touch what the
// caller supplied. Any status field in the request body is ignored; the
// operation decides the status.
type SessionInput struct {
	ID          *int64   `json:"id"`
	Title       *string  `json:"title"`
	Tags        []string `json:"tags"`
	JSONFileURL *string  `json:"json_file_url"`
}

// SessionRepository defines the data-access contract for session operations.
// Implementations live in internal/core/repository, one per storage backend.
// All lookups that take an owner are scoped to it: a session owned by
// someone else behaves exactly like a missing one.
type SessionRepository interface {
	// ListPublished returns every published session regardless of owner,
	// newest first. An empty result is valid.
	ListPublished(ctx context.Context) ([]Session, error)

	// ListByOwner returns every session owned by the given identity, any
	// status, newest first.
	ListByOwner(ctx context.Context, owner Identity) ([]Session, error)

	// GetOwned returns the session with the given id if it is owned by the
	// given identity. Returns (nil, nil) when the session is absent or
	// owned by someone else.
	GetOwned(ctx context.Context, owner Identity, id int64) (*Session, error)

	// Create inserts a new session and returns the stored record with its
	// generated id and timestamps.
	Create(ctx context.Context, session *Session) (*Session, error)

	// Update rewrites the mutable fields of an owned session in a single
	// record write and refreshes UpdatedAt. Owner and CreatedAt are never
	// touched. Returns (nil, nil) when the session is absent or owned by
	// someone else.
	Update(ctx context.Context, owner Identity, session *Session) (*Session, error)
}
