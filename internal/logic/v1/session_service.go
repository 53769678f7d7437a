package v1

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/minhngo/wellness-sessions/internal/core/domain"
	"github.com/minhngo/wellness-sessions/middleware"
)

// SessionService implements the draft/publish lifecycle. It depends on the
// repository interface only and never on a storage driver.
//
// Both write operations decide the resulting status themselves: save-draft
// always writes draft, publish always writes published, whatever the caller
// sent. Validation runs on the fully merged record before any write, so a
// validation failure persists nothing.
type SessionService struct {
	sessions domain.SessionRepository
}

// NewSessionService creates a SessionService with the given repository.
func NewSessionService(sessions domain.SessionRepository) *SessionService {
	return &SessionService{sessions: sessions}
}

// ListPublic returns every published session regardless of owner.
func (s *SessionService) ListPublic(ctx context.Context) ([]domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "sessions.list_public", trace.WithAttributes(
		attribute.String("layer", "logic"),
	))
	defer span.End()

	sessions, err := s.sessions.ListPublished(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list published sessions: %w", err)
	}
	span.SetAttributes(attribute.Int("sessions.count", len(sessions)))
	return sessions, nil
}

// ListMine returns every session owned by the caller, any status.
func (s *SessionService) ListMine(ctx context.Context, identity domain.Identity) ([]domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "sessions.list_mine", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", identity.UserID),
	))
	defer span.End()

	sessions, err := s.sessions.ListByOwner(ctx, identity)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("list sessions for user %d: %w", identity.UserID, err)
	}
	span.SetAttributes(attribute.Int("sessions.count", len(sessions)))
	return sessions, nil
}

// GetMine returns one session owned by the caller. A session owned by
// someone else reports the same ErrSessionNotFound as a missing one.
func (s *SessionService) GetMine(ctx context.Context, identity domain.Identity, id int64) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "sessions.get_mine", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("session.id", id),
	))
	defer span.End()

	session, err := s.sessions.GetOwned(ctx, identity, id)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("get session %d: %w", id, err)
	}
	if session == nil {
		return nil, fmt.Errorf("get session %d: %w", id, ErrSessionNotFound)
	}
	return session, nil
}

// SaveDraft upserts a session as a draft. With an id it partially updates an
// owned session; without one it creates a new session owned by the caller.
// The stored status is draft either way.
func (s *SessionService) SaveDraft(ctx context.Context, identity domain.Identity, in domain.SessionInput) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "sessions.save_draft", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", identity.UserID),
	))
	defer span.End()

	session, err := s.save(ctx, identity, in, domain.StatusDraft, false)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("session.id", session.ID))
	return session, nil
}

// Publish sets an owned session to published, merging any other supplied
// fields first. The id is mandatory; publishing never creates.
func (s *SessionService) Publish(ctx context.Context, identity domain.Identity, in domain.SessionInput) (*domain.Session, error) {
	ctx, span := middleware.StartSpan(ctx, "sessions.publish", trace.WithAttributes(
		attribute.String("layer", "logic"),
		attribute.Int64("user.id", identity.UserID),
	))
	defer span.End()

	if in.ID == nil {
		return nil, fmt.Errorf("publish session: %w", ErrSessionIDRequired)
	}

	session, err := s.save(ctx, identity, in, domain.StatusPublished, true)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int64("session.id", session.ID))
	return session, nil
}

// save is the shared write path: resolve the target record, merge the
// supplied fields, force the status, validate, then write exactly once.
func (s *SessionService) save(ctx context.Context, identity domain.Identity, in domain.SessionInput, status domain.SessionStatus, requireExisting bool) (*domain.Session, error) {
	var session *domain.Session

	if in.ID != nil {
		existing, err := s.sessions.GetOwned(ctx, identity, *in.ID)
		if err != nil {
			return nil, fmt.Errorf("get session %d: %w", *in.ID, err)
		}
		if existing == nil {
			return nil, fmt.Errorf("get session %d: %w", *in.ID, ErrSessionNotFound)
		}
		session = existing
	} else {
		if requireExisting {
			return nil, fmt.Errorf("save session: %w", ErrSessionIDRequired)
		}
		session = &domain.Session{
			OwnerID:    identity.UserID,
			OwnerEmail: identity.Email,
		}
	}

	mergeInput(session, in)
	session.Status = status

	if verr := validateSession(session); verr != nil {
		return nil, fmt.Errorf("validate session: %w", verr)
	}

	if in.ID != nil {
		updated, err := s.sessions.Update(ctx, identity, session)
		if err != nil {
			return nil, fmt.Errorf("update session %d: %w", session.ID, err)
		}
		if updated == nil {
			// The record disappeared between read and write.
			return nil, fmt.Errorf("update session %d: %w", session.ID, ErrSessionNotFound)
		}
		return updated, nil
	}

	created, err := s.sessions.Create(ctx, session)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return created, nil
}

// mergeInput applies only the fields the caller supplied. Status is not
// merged: the operation owns it.
func mergeInput(session *domain.Session, in domain.SessionInput) {
	if in.Title != nil {
		session.Title = *in.Title
	}
	if in.Tags != nil {
		session.Tags = in.Tags
	}
	if in.JSONFileURL != nil {
		session.JSONFileURL = *in.JSONFileURL
	}
}
