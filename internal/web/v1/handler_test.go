package v1

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/minhngo/wellness-sessions/internal/core/repository"
	logicv1 "github.com/minhngo/wellness-sessions/internal/logic/v1"
	"github.com/minhngo/wellness-sessions/middleware"
)

const testJWTSecret = "handler-test-secret"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	users := repository.NewMemoryUserRepository()
	sessions := repository.NewMemorySessionRepository()
	authService := logicv1.NewAuthService(users, []byte(testJWTSecret), time.Hour)
	sessionService := logicv1.NewSessionService(sessions)

	r := gin.New()
	api := r.Group("/api")
	NewHandler(authService, sessionService).
		RegisterRoutes(api, middleware.RequireAuth([]byte(testJWTSecret)))
	return r
}

func doJSONRequest(t *testing.T, router *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func decodeJSON(t *testing.T, data []byte, out any) {
	t.Helper()
	if err := json.Unmarshal(data, out); err != nil {
		t.Fatalf("decode response %q: %v", data, err)
	}
}

func assertStatus(t *testing.T, resp *httptest.ResponseRecorder, want int) {
	t.Helper()
	if resp.Code != want {
		t.Fatalf("expected status %d, got %d (body %s)", want, resp.Code, resp.Body.String())
	}
}

func registerUser(t *testing.T, router *gin.Engine, email string) (int64, map[string]string) {
	t.Helper()

	resp := doJSONRequest(t, router, http.MethodPost, "/api/users/register/", map[string]string{
		"email":    email,
		"password": "sufficiently-long-password",
	}, nil)
	assertStatus(t, resp, http.StatusCreated)

	var body struct {
		Token string `json:"token"`
		User  struct {
			ID    int64  `json:"id"`
			Email string `json:"email"`
		} `json:"user"`
	}
	decodeJSON(t, resp.Body.Bytes(), &body)
	if body.Token == "" || body.User.ID == 0 {
		t.Fatalf("expected token and user id in register response, got %s", resp.Body.String())
	}
	return body.User.ID, map[string]string{"Authorization": "Bearer " + body.Token}
}

type sessionBody struct {
	ID   int64 `json:"id"`
	User struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	} `json:"user"`
	Title       string   `json:"title"`
	Tags        []string `json:"tags"`
	JSONFileURL string   `json:"json_file_url"`
	Status      string   `json:"status"`
}

func TestSessionLifecycleEndToEnd(t *testing.T) {
	router := newTestRouter(t)

	aliceID, aliceAuth := registerUser(t, router, "alice@example.com")
	_, bobAuth := registerUser(t, router, "bob@example.com")

	// Save a new draft.
	resp := doJSONRequest(t, router, http.MethodPost, "/api/my-sessions/save-draft/", map[string]any{
		"title":         "Morning Flow",
		"tags":          []string{"yoga"},
		"json_file_url": "https://example.com/flows/a.json",
	}, aliceAuth)
	assertStatus(t, resp, http.StatusOK)

	var draft sessionBody
	decodeJSON(t, resp.Body.Bytes(), &draft)
	if draft.Status != "draft" {
		t.Fatalf("expected draft status, got %q", draft.Status)
	}
	if draft.User.ID != aliceID {
		t.Fatalf("expected owner %d, got %d", aliceID, draft.User.ID)
	}

	// Drafts are invisible publicly.
	resp = doJSONRequest(t, router, http.MethodGet, "/api/sessions/", nil, nil)
	assertStatus(t, resp, http.StatusOK)
	var public []sessionBody
	decodeJSON(t, resp.Body.Bytes(), &public)
	if len(public) != 0 {
		t.Fatalf("expected empty public listing, got %d sessions", len(public))
	}

	// Bob cannot publish Alice's session.
	resp = doJSONRequest(t, router, http.MethodPost, "/api/my-sessions/publish/", map[string]any{
		"id": draft.ID,
	}, bobAuth)
	assertStatus(t, resp, http.StatusNotFound)
	var errBody map[string]string
	decodeJSON(t, resp.Body.Bytes(), &errBody)
	if errBody["detail"] != "Session not found." {
		t.Fatalf("expected generic not-found detail, got %q", errBody["detail"])
	}

	// Alice publishes it.
	resp = doJSONRequest(t, router, http.MethodPost, "/api/my-sessions/publish/", map[string]any{
		"id": draft.ID,
	}, aliceAuth)
	assertStatus(t, resp, http.StatusOK)
	var published sessionBody
	decodeJSON(t, resp.Body.Bytes(), &published)
	if published.Status != "published" {
		t.Fatalf("expected published status, got %q", published.Status)
	}
	if published.ID != draft.ID || published.User.ID != aliceID {
		t.Fatalf("publish changed identity or owner: %+v", published)
	}

	// Now it shows up publicly, without auth.
	resp = doJSONRequest(t, router, http.MethodGet, "/api/sessions/", nil, nil)
	assertStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp.Body.Bytes(), &public)
	if len(public) != 1 || public[0].ID != draft.ID {
		t.Fatalf("expected the published session in public listing, got %s", resp.Body.String())
	}
}

func TestMySessionsScopedToCaller(t *testing.T) {
	router := newTestRouter(t)

	_, aliceAuth := registerUser(t, router, "alice@example.com")
	_, bobAuth := registerUser(t, router, "bob@example.com")

	resp := doJSONRequest(t, router, http.MethodPost, "/api/my-sessions/save-draft/", map[string]any{
		"title":         "Morning Flow",
		"json_file_url": "https://example.com/flows/a.json",
	}, aliceAuth)
	assertStatus(t, resp, http.StatusOK)
	var draft sessionBody
	decodeJSON(t, resp.Body.Bytes(), &draft)

	// Bob's listing is empty; Alice's has one entry.
	resp = doJSONRequest(t, router, http.MethodGet, "/api/my-sessions/", nil, bobAuth)
	assertStatus(t, resp, http.StatusOK)
	var sessions []sessionBody
	decodeJSON(t, resp.Body.Bytes(), &sessions)
	if len(sessions) != 0 {
		t.Fatalf("expected no sessions for bob, got %d", len(sessions))
	}

	resp = doJSONRequest(t, router, http.MethodGet, "/api/my-sessions/", nil, aliceAuth)
	assertStatus(t, resp, http.StatusOK)
	decodeJSON(t, resp.Body.Bytes(), &sessions)
	if len(sessions) != 1 {
		t.Fatalf("expected one session for alice, got %d", len(sessions))
	}

	// Detail fetch respects ownership the same way.
	path := fmt.Sprintf("/api/my-sessions/%d/", draft.ID)
	resp = doJSONRequest(t, router, http.MethodGet, path, nil, aliceAuth)
	assertStatus(t, resp, http.StatusOK)

	resp = doJSONRequest(t, router, http.MethodGet, path, nil, bobAuth)
	assertStatus(t, resp, http.StatusNotFound)
}

func TestPublishWithoutIDIsBadRequest(t *testing.T) {
	router := newTestRouter(t)
	_, auth := registerUser(t, router, "alice@example.com")

	resp := doJSONRequest(t, router, http.MethodPost, "/api/my-sessions/publish/", map[string]any{
		"title": "No id here",
	}, auth)
	assertStatus(t, resp, http.StatusBadRequest)

	var errBody map[string]string
	decodeJSON(t, resp.Body.Bytes(), &errBody)
	if errBody["detail"] != "Session id required." {
		t.Fatalf("expected id-required detail, got %q", errBody["detail"])
	}
}

func TestSaveDraftValidationErrors(t *testing.T) {
	router := newTestRouter(t)
	_, auth := registerUser(t, router, "alice@example.com")

	resp := doJSONRequest(t, router, http.MethodPost, "/api/my-sessions/save-draft/", map[string]any{
		"title":         "",
		"json_file_url": "not a url",
	}, auth)
	assertStatus(t, resp, http.StatusBadRequest)

	var fields map[string]string
	decodeJSON(t, resp.Body.Bytes(), &fields)
	if _, ok := fields["title"]; !ok {
		t.Fatalf("expected title validation message, got %s", resp.Body.String())
	}
	if _, ok := fields["json_file_url"]; !ok {
		t.Fatalf("expected json_file_url validation message, got %s", resp.Body.String())
	}
}

func TestAuthRequired(t *testing.T) {
	router := newTestRouter(t)

	protected := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/my-sessions/"},
		{http.MethodGet, "/api/my-sessions/1/"},
		{http.MethodPost, "/api/my-sessions/save-draft/"},
		{http.MethodPost, "/api/my-sessions/publish/"},
		{http.MethodGet, "/api/users/me/"},
	}
	for _, ep := range protected {
		resp := doJSONRequest(t, router, ep.method, ep.path, nil, nil)
		assertStatus(t, resp, http.StatusUnauthorized)

		resp = doJSONRequest(t, router, ep.method, ep.path, nil, map[string]string{
			"Authorization": "Bearer bogus-token",
		})
		assertStatus(t, resp, http.StatusUnauthorized)
	}
}

func TestLoginAndMe(t *testing.T) {
	router := newTestRouter(t)
	userID, _ := registerUser(t, router, "alice@example.com")

	// Wrong password is rejected without detail.
	resp := doJSONRequest(t, router, http.MethodPost, "/api/users/login/", map[string]string{
		"email":    "alice@example.com",
		"password": "wrong",
	}, nil)
	assertStatus(t, resp, http.StatusUnauthorized)

	// Unknown user gets the same response shape.
	resp = doJSONRequest(t, router, http.MethodPost, "/api/users/login/", map[string]string{
		"email":    "nobody@example.com",
		"password": "whatever",
	}, nil)
	assertStatus(t, resp, http.StatusUnauthorized)

	resp = doJSONRequest(t, router, http.MethodPost, "/api/users/login/", map[string]string{
		"email":    "alice@example.com",
		"password": "sufficiently-long-password",
	}, nil)
	assertStatus(t, resp, http.StatusOK)

	var login struct {
		Token string `json:"token"`
	}
	decodeJSON(t, resp.Body.Bytes(), &login)

	resp = doJSONRequest(t, router, http.MethodGet, "/api/users/me/", nil, map[string]string{
		"Authorization": "Bearer " + login.Token,
	})
	assertStatus(t, resp, http.StatusOK)

	var me struct {
		ID    int64  `json:"id"`
		Email string `json:"email"`
	}
	decodeJSON(t, resp.Body.Bytes(), &me)
	if me.ID != userID || me.Email != "alice@example.com" {
		t.Fatalf("unexpected me response: %s", resp.Body.String())
	}
}

func TestRegisterDuplicateEmailConflict(t *testing.T) {
	router := newTestRouter(t)
	registerUser(t, router, "alice@example.com")

	resp := doJSONRequest(t, router, http.MethodPost, "/api/users/register/", map[string]string{
		"email":    "alice@example.com",
		"password": "sufficiently-long-password",
	}, nil)
	assertStatus(t, resp, http.StatusConflict)
}
