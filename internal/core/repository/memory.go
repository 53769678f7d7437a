package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/minhngo/wellness-sessions/internal/core/domain"
)

// In-memory implementations of the domain repositories. They back the unit
// and handler tests; nothing is persisted across process restarts.

// MemoryUserRepository implements domain.UserRepository in process memory.
type MemoryUserRepository struct {
	mu     sync.RWMutex
	nextID int64
	users  map[int64]domain.User
}

// NewMemoryUserRepository creates an empty MemoryUserRepository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{users: make(map[int64]domain.User)}
}

func (r *MemoryUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			copied := u
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if u, ok := r.users[id]; ok {
		copied := u
		return &copied, nil
	}
	return nil, nil
}

func (r *MemoryUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, err := r.GetByEmail(ctx, email)
	return u != nil, err
}

func (r *MemoryUserRepository) Create(ctx context.Context, email, passwordHash string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	u := domain.User{
		ID:           r.nextID,
		Email:        email,
		PasswordHash: passwordHash,
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}
	r.users[u.ID] = u
	copied := u
	return &copied, nil
}

func (r *MemoryUserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		u.PasswordHash = passwordHash
		r.users[id] = u
	}
	return nil
}

// MemorySessionRepository implements domain.SessionRepository in process
// memory. Ownership is matched on UserID like the relational backend.
type MemorySessionRepository struct {
	mu       sync.RWMutex
	nextID   int64
	sessions map[int64]domain.Session
}

// NewMemorySessionRepository creates an empty MemorySessionRepository.
func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{sessions: make(map[int64]domain.Session)}
}

func (r *MemorySessionRepository) list(match func(domain.Session) bool) []domain.Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []domain.Session{}
	for _, s := range r.sessions {
		if match(s) {
			out = append(out, cloneSession(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func cloneSession(s domain.Session) domain.Session {
	tags := make([]string, len(s.Tags))
	copy(tags, s.Tags)
	s.Tags = tags
	return s
}

func (r *MemorySessionRepository) ListPublished(ctx context.Context) ([]domain.Session, error) {
	return r.list(func(s domain.Session) bool {
		return s.Status == domain.StatusPublished
	}), nil
}

func (r *MemorySessionRepository) ListByOwner(ctx context.Context, owner domain.Identity) ([]domain.Session, error) {
	return r.list(func(s domain.Session) bool {
		return s.OwnerID == owner.UserID
	}), nil
}

func (r *MemorySessionRepository) GetOwned(ctx context.Context, owner domain.Identity, id int64) (*domain.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok || s.OwnerID != owner.UserID {
		return nil, nil
	}
	copied := cloneSession(s)
	return &copied, nil
}

func (r *MemorySessionRepository) Create(ctx context.Context, session *domain.Session) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	now := time.Now().UTC()

	s := cloneSession(*session)
	s.ID = r.nextID
	s.CreatedAt = now
	s.UpdatedAt = now
	if s.Tags == nil {
		s.Tags = []string{}
	}
	r.sessions[s.ID] = s
	copied := cloneSession(s)
	return &copied, nil
}

func (r *MemorySessionRepository) Update(ctx context.Context, owner domain.Identity, session *domain.Session) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.sessions[session.ID]
	if !ok || existing.OwnerID != owner.UserID {
		return nil, nil
	}

	existing.Title = session.Title
	existing.Tags = append([]string{}, session.Tags...)
	existing.JSONFileURL = session.JSONFileURL
	existing.Status = session.Status
	existing.UpdatedAt = time.Now().UTC()
	r.sessions[session.ID] = existing

	copied := cloneSession(existing)
	return &copied, nil
}
