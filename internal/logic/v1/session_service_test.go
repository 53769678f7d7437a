package v1

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minhngo/wellness-sessions/internal/core/domain"
	"github.com/minhngo/wellness-sessions/internal/core/repository"
)

var (
	alice = domain.Identity{UserID: 1, Email: "alice@example.com"}
	bob   = domain.Identity{UserID: 2, Email: "bob@example.com"}
)

func newSessionService() (*SessionService, *repository.MemorySessionRepository) {
	repo := repository.NewMemorySessionRepository()
	return NewSessionService(repo), repo
}

func strPtr(s string) *string { return &s }

func draftInput() domain.SessionInput {
	return domain.SessionInput{
		Title:       strPtr("Morning Flow"),
		Tags:        []string{"yoga", "morning"},
		JSONFileURL: strPtr("https://example.com/flows/a.json"),
	}
}

func TestSaveDraft_CreatesNewDraft(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	session, err := svc.SaveDraft(ctx, alice, draftInput())
	require.NoError(t, err)

	assert.NotZero(t, session.ID)
	assert.Equal(t, domain.StatusDraft, session.Status)
	assert.Equal(t, alice.UserID, session.OwnerID)
	assert.Equal(t, "Morning Flow", session.Title)
	assert.Equal(t, []string{"yoga", "morning"}, session.Tags)
	assert.False(t, session.CreatedAt.IsZero())
	assert.False(t, session.UpdatedAt.Before(session.CreatedAt))

	// Exactly one record exists, owned by the caller.
	mine, err := svc.ListMine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, session.ID, mine[0].ID)
}

func TestSaveDraft_PartialUpdateKeepsOtherFields(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	created, err := svc.SaveDraft(ctx, alice, draftInput())
	require.NoError(t, err)

	updated, err := svc.SaveDraft(ctx, alice, domain.SessionInput{
		ID:    &created.ID,
		Title: strPtr("Evening Flow"),
	})
	require.NoError(t, err)

	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Evening Flow", updated.Title)
	assert.Equal(t, created.Tags, updated.Tags)
	assert.Equal(t, created.JSONFileURL, updated.JSONFileURL)
	assert.Equal(t, domain.StatusDraft, updated.Status)
	assert.Equal(t, created.CreatedAt, updated.CreatedAt)
}

func TestSaveDraft_ForeignSessionIsNotFound(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	created, err := svc.SaveDraft(ctx, alice, draftInput())
	require.NoError(t, err)

	_, err = svc.SaveDraft(ctx, bob, domain.SessionInput{
		ID:    &created.ID,
		Title: strPtr("Hijacked"),
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)

	// No mutation happened.
	unchanged, err := svc.GetMine(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Morning Flow", unchanged.Title)
	assert.Equal(t, created.UpdatedAt, unchanged.UpdatedAt)
}

func TestSaveDraft_ForcesDraftStatusOnPublished(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	created, err := svc.SaveDraft(ctx, alice, draftInput())
	require.NoError(t, err)
	published, err := svc.Publish(ctx, alice, domain.SessionInput{ID: &created.ID})
	require.NoError(t, err)
	require.Equal(t, domain.StatusPublished, published.Status)

	// Saving as draft again pulls the session back regardless of its
	// current status.
	redrafted, err := svc.SaveDraft(ctx, alice, domain.SessionInput{ID: &created.ID})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, redrafted.Status)
}

func TestSaveDraft_ValidationErrors(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	tests := []struct {
		name  string
		in    domain.SessionInput
		field string
	}{
		{"missing title", domain.SessionInput{
			JSONFileURL: strPtr("https://example.com/a.json"),
		}, "title"},
		{"missing url", domain.SessionInput{
			Title: strPtr("Morning Flow"),
		}, "json_file_url"},
		{"malformed url", domain.SessionInput{
			Title:       strPtr("Morning Flow"),
			JSONFileURL: strPtr("not a url"),
		}, "json_file_url"},
		{"blank tag", domain.SessionInput{
			Title:       strPtr("Morning Flow"),
			Tags:        []string{"yoga", ""},
			JSONFileURL: strPtr("https://example.com/a.json"),
		}, "tags"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SaveDraft(ctx, alice, tt.in)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}

	// Nothing was persisted by any of the failed saves.
	mine, err := svc.ListMine(ctx, alice)
	require.NoError(t, err)
	assert.Empty(t, mine)
}

func TestPublish_RequiresID(t *testing.T) {
	svc, _ := newSessionService()

	_, err := svc.Publish(context.Background(), alice, draftInput())
	assert.ErrorIs(t, err, ErrSessionIDRequired)
}

func TestPublish_ForeignSessionIsNotFound(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	created, err := svc.SaveDraft(ctx, alice, draftInput())
	require.NoError(t, err)

	_, err = svc.Publish(ctx, bob, domain.SessionInput{ID: &created.ID})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestPublish_PreservesOwnerAndCreatedAt(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	created, err := svc.SaveDraft(ctx, alice, draftInput())
	require.NoError(t, err)

	published, err := svc.Publish(ctx, alice, domain.SessionInput{
		ID:    &created.ID,
		Title: strPtr("Morning Flow v2"),
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusPublished, published.Status)
	assert.Equal(t, created.OwnerID, published.OwnerID)
	assert.Equal(t, created.CreatedAt, published.CreatedAt)
	assert.Equal(t, "Morning Flow v2", published.Title)
	assert.False(t, published.UpdatedAt.Before(created.UpdatedAt))
}

func TestListPublic_ExcludesDrafts(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	draft, err := svc.SaveDraft(ctx, alice, draftInput())
	require.NoError(t, err)

	other, err := svc.SaveDraft(ctx, bob, draftInput())
	require.NoError(t, err)
	published, err := svc.Publish(ctx, bob, domain.SessionInput{ID: &other.ID})
	require.NoError(t, err)

	public, err := svc.ListPublic(ctx)
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, published.ID, public[0].ID)
	for _, s := range public {
		assert.NotEqual(t, draft.ID, s.ID)
		assert.Equal(t, domain.StatusPublished, s.Status)
	}
}

func TestListMine_ScopedToOwner(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	mineSession, err := svc.SaveDraft(ctx, alice, draftInput())
	require.NoError(t, err)
	_, err = svc.SaveDraft(ctx, bob, draftInput())
	require.NoError(t, err)

	mine, err := svc.ListMine(ctx, alice)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, mineSession.ID, mine[0].ID)
	assert.Equal(t, alice.UserID, mine[0].OwnerID)
}

func TestGetMine(t *testing.T) {
	svc, _ := newSessionService()
	ctx := context.Background()

	created, err := svc.SaveDraft(ctx, alice, draftInput())
	require.NoError(t, err)

	got, err := svc.GetMine(ctx, alice, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)

	_, err = svc.GetMine(ctx, bob, created.ID)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.GetMine(ctx, alice, 9999)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSaveDraft_RepositoryError(t *testing.T) {
	svc := NewSessionService(&failingSessionRepo{})

	_, err := svc.SaveDraft(context.Background(), alice, draftInput())
	assert.Error(t, err)
	assert.False(t, errors.Is(err, ErrSessionNotFound))
}

// failingSessionRepo returns an error from every operation.
type failingSessionRepo struct{}

var errStorage = errors.New("storage unavailable")

func (f *failingSessionRepo) ListPublished(context.Context) ([]domain.Session, error) {
	return nil, errStorage
}

func (f *failingSessionRepo) ListByOwner(context.Context, domain.Identity) ([]domain.Session, error) {
	return nil, errStorage
}

func (f *failingSessionRepo) GetOwned(context.Context, domain.Identity, int64) (*domain.Session, error) {
	return nil, errStorage
}

func (f *failingSessionRepo) Create(context.Context, *domain.Session) (*domain.Session, error) {
	return nil, errStorage
}

func (f *failingSessionRepo) Update(context.Context, domain.Identity, *domain.Session) (*domain.Session, error) {
	return nil, errStorage
}
