package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/minhngo/wellness-sessions/internal/core/domain"
)

// PgxSessionRepository implements domain.SessionRepository using pgxpool.
// Sessions are scoped by user_id; the owner's email is joined in for the
// wire representation.
type PgxSessionRepository struct {
	pool *pgxpool.Pool
}

// NewSessionRepository creates a new PgxSessionRepository.
func NewSessionRepository(pool *pgxpool.Pool) *PgxSessionRepository {
	return &PgxSessionRepository{pool: pool}
}

const sessionColumns = `
	s.id, s.user_id, u.email, s.title, s.tags, s.json_file_url,
	s.status, s.created_at, s.updated_at`

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID, &s.OwnerID, &s.OwnerEmail, &s.Title, &s.Tags,
		&s.JSONFileURL, &s.Status, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &s, nil
}

func collectSessions(rows pgx.Rows) ([]domain.Session, error) {
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *s)
	}
	return sessions, rows.Err()
}

// ListPublished returns every published session, newest first.
func (r *PgxSessionRepository) ListPublished(ctx context.Context) ([]domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM user_sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.status = $1
		ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.pool.Query(ctx, query, domain.StatusPublished)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// ListByOwner returns every session owned by the given identity, any status,
// newest first.
func (r *PgxSessionRepository) ListByOwner(ctx context.Context, owner domain.Identity) ([]domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM user_sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.user_id = $1
		ORDER BY s.created_at DESC, s.id DESC`

	rows, err := r.pool.Query(ctx, query, owner.UserID)
	if err != nil {
		return nil, err
	}
	return collectSessions(rows)
}

// GetOwned returns the session with the given id if owned by the identity.
// Returns (nil, nil) when absent or owned by someone else.
func (r *PgxSessionRepository) GetOwned(ctx context.Context, owner domain.Identity, id int64) (*domain.Session, error) {
	query := `
		SELECT ` + sessionColumns + `
		FROM user_sessions s
		JOIN users u ON s.user_id = u.id
		WHERE s.id = $1 AND s.user_id = $2`

	return scanSession(r.pool.QueryRow(ctx, query, id, owner.UserID))
}

// encodeTags serializes tags for the jsonb column. The parameter is passed
// as text and cast in SQL because pgx would otherwise send []string as a
// text array.
func encodeTags(tags []string) (string, error) {
	if tags == nil {
		tags = []string{}
	}
	data, err := json.Marshal(tags)
	if err != nil {
		return "", fmt.Errorf("encode tags: %w", err)
	}
	return string(data), nil
}

// Create inserts a new session and returns the stored record.
func (r *PgxSessionRepository) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	query := `
		WITH inserted AS (
			INSERT INTO user_sessions (user_id, title, tags, json_file_url, status)
			VALUES ($1, $2, $3::jsonb, $4, $5)
			RETURNING *
		)
		SELECT ` + sessionColumns + `
		FROM inserted s
		JOIN users u ON s.user_id = u.id`

	tags, err := encodeTags(session.Tags)
	if err != nil {
		return nil, err
	}
	return scanSession(r.pool.QueryRow(ctx, query,
		session.OwnerID, session.Title, tags, session.JSONFileURL, session.Status))
}

// Update rewrites the mutable fields of an owned session in a single row
// write. Owner and created_at stay untouched; updated_at is refreshed.
// Returns (nil, nil) when the row is absent or owned by someone else.
func (r *PgxSessionRepository) Update(ctx context.Context, owner domain.Identity, session *domain.Session) (*domain.Session, error) {
	query := `
		WITH updated AS (
			UPDATE user_sessions
			SET title = $1, tags = $2::jsonb, json_file_url = $3, status = $4,
			    updated_at = now()
			WHERE id = $5 AND user_id = $6
			RETURNING *
		)
		SELECT ` + sessionColumns + `
		FROM updated s
		JOIN users u ON s.user_id = u.id`

	tags, err := encodeTags(session.Tags)
	if err != nil {
		return nil, err
	}
	return scanSession(r.pool.QueryRow(ctx, query,
		session.Title, tags, session.JSONFileURL, session.Status,
		session.ID, owner.UserID))
}
