package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Nayab-Gohar-95/llm-saas-backend/auth"
	"github.com/Nayab-Gohar-95/llm-saas-backend/chat"
	"github.com/Nayab-Gohar-95/llm-saas-backend/internal/config"
	"github.com/Nayab-Gohar-95/llm-saas-backend/llm"
	fakemessagerepo "github.com/Nayab-Gohar-95/llm-saas-backend/messages/repofake"
	"github.com/Nayab-Gohar-95/llm-saas-backend/server"
	"github.com/Nayab-Gohar-95/llm-saas-backend/tenants"
	tenantrepofakes "github.com/Nayab-Gohar-95/llm-saas-backend/tenants/repofakes"
	"github.com/Nayab-Gohar-95/llm-saas-backend/token"
	"github.com/Nayab-Gohar-95/llm-saas-backend/tracking"
	"github.com/Nayab-Gohar-95/llm-saas-backend/users"
	fakeuserrepo "github.com/Nayab-Gohar-95/llm-saas-backend/users/repofake"
)

const (
	secretStr        = "test-secret-1234"
	issuer           = "com.testissuer"
	testTenantID     = "tenant-1"
	otherTenantID    = "tenant-2"
	testUserPassword = "Password123"
)

type testFixture struct {
	server      *server.Server
	userRepo    users.UserRepo
	tenantRepo  tenants.Repo
	messageRepo *fakemessagerepo.FakeMessageRepo
	guard       *auth.Guard
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	ur := fakeuserrepo.NewFakeUserRepo()
	tr := tenantrepofakes.NewFakeTenantRepo()
	mr := fakemessagerepo.NewFakeMessageRepo()

	require.NoError(t, tr.Create(context.Background(), &tenants.Tenant{ID: testTenantID, Name: "Tenant One"}))
	require.NoError(t, tr.Create(context.Background(), &tenants.Tenant{ID: otherTenantID, Name: "Tenant Two"}))

	repos := auth.Repos{Users: ur, Tenants: tr}
	codec := token.NewCodec(secretStr, issuer)
	guard, err := auth.NewGuard(repos, codec, time.Hour)
	require.NoError(t, err)

	orchestrator, err := chat.NewOrchestrator(llm.NewMockProvider(), mr, tracking.NopRecorder{}, chat.Params{
		Model:       "test-model",
		MaxTokens:   64,
		Temperature: 0.2,
		Environment: "TEST",
	})
	require.NoError(t, err)

	srv, err := server.New(config.New(), guard, repos, orchestrator)
	require.NoError(t, err)

	return &testFixture{
		server:      srv,
		userRepo:    ur,
		tenantRepo:  tr,
		messageRepo: mr,
		guard:       guard,
	}
}

func (f *testFixture) createTestUser(t *testing.T, id, email string, role users.RoleType, tenantID string) *users.User {
	t.Helper()

	passwordHash, err := users.HashPassword(testUserPassword)
	require.NoError(t, err)

	user := &users.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		TenantID:     tenantID,
		CreatedAt:    time.Now(),
	}
	require.NoError(t, f.userRepo.Create(context.Background(), user))
	return user
}

func (f *testFixture) tokenFor(t *testing.T, user *users.User) string {
	t.Helper()

	signed, err := f.guard.IssueFor(user)
	require.NoError(t, err)
	return signed
}

func (f *testFixture) do(t *testing.T, method, path, bearer string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(raw)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	rec := httptest.NewRecorder()
	f.server.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()

	var out T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	return out
}

func TestHealth(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestTenantOnboardingFlow(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodPost, "/create-tenant", "", map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusCreated, rec.Code)
	tenant := decode[tenants.Tenant](t, rec)
	require.NotEmpty(t, tenant.ID)
	require.Equal(t, "Acme", tenant.Name)

	// Duplicate names conflict
	rec = f.do(t, http.MethodPost, "/create-tenant", "", map[string]string{"name": "Acme"})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Register into the new tenant
	rec = f.do(t, http.MethodPost, "/register", "", map[string]string{
		"email": "Jane@Example.com", "password": testUserPassword, "tenant_id": tenant.ID,
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[users.User](t, rec)
	require.Equal(t, "jane@example.com", created.Email)
	require.Equal(t, users.RoleUser, created.Role)
	require.Equal(t, tenant.ID, created.TenantID)

	// Log in and read the profile back
	rec = f.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": "jane@example.com", "password": testUserPassword,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	tokenResp := decode[server.TokenResponse](t, rec)
	require.NotEmpty(t, tokenResp.AccessToken)
	require.Equal(t, "bearer", tokenResp.TokenType)

	rec = f.do(t, http.MethodGet, "/me", tokenResp.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	me := decode[users.User](t, rec)
	require.Equal(t, "jane@example.com", me.Email)
}

func TestRegisterValidation(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, "u-1", "taken@example.com", users.RoleUser, testTenantID)

	// Unknown tenant
	rec := f.do(t, http.MethodPost, "/register", "", map[string]string{
		"email": "a@example.com", "password": testUserPassword, "tenant_id": "no-such-tenant",
	})
	require.Equal(t, http.StatusNotFound, rec.Code)

	// Duplicate email
	rec = f.do(t, http.MethodPost, "/register", "", map[string]string{
		"email": "taken@example.com", "password": testUserPassword, "tenant_id": testTenantID,
	})
	require.Equal(t, http.StatusConflict, rec.Code)

	// Weak password
	rec = f.do(t, http.MethodPost, "/register", "", map[string]string{
		"email": "b@example.com", "password": "short", "tenant_id": testTenantID,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Invalid email
	rec = f.do(t, http.MethodPost, "/register", "", map[string]string{
		"email": "not-an-email", "password": testUserPassword, "tenant_id": testTenantID,
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginFailure(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, "u-1", "jane@example.com", users.RoleUser, testTenantID)

	rec := f.do(t, http.MethodPost, "/login", "", map[string]string{
		"email": "jane@example.com", "password": "WrongPassword1",
	})
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticationRequired(t *testing.T) {
	f := setupTestFixture(t)

	for _, route := range []string{"/me", "/messages"} {
		rec := f.do(t, http.MethodGet, route, "", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code, "route %s", route)
	}

	rec := f.do(t, http.MethodGet, "/me", "garbage-token", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDeletedUserTokenRejected(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "u-1", "jane@example.com", users.RoleUser, testTenantID)
	bearer := f.tokenFor(t, user)

	rec := f.do(t, http.MethodGet, "/me", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, f.userRepo.Delete(context.Background(), user.ID))

	rec = f.do(t, http.MethodGet, "/me", bearer, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.createTestUser(t, "u-admin", "admin@example.com", users.RoleAdmin, testTenantID)
	regular := f.createTestUser(t, "u-user", "user@example.com", users.RoleUser, testTenantID)
	adminBearer := f.tokenFor(t, admin)
	regularBearer := f.tokenFor(t, regular)

	// Non-admins are forbidden
	rec := f.do(t, http.MethodPost, "/admin/users", regularBearer, map[string]string{
		"email": "new@example.com", "password": testUserPassword,
	})
	require.Equal(t, http.StatusForbidden, rec.Code)

	// Admin creates a user in their own tenant
	rec = f.do(t, http.MethodPost, "/admin/users", adminBearer, map[string]string{
		"email": "new@example.com", "password": testUserPassword, "role": "admin",
	})
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[users.User](t, rec)
	require.Equal(t, testTenantID, created.TenantID)
	require.Equal(t, users.RoleAdmin, created.Role)

	// Invalid role is rejected
	rec = f.do(t, http.MethodPost, "/admin/users", adminBearer, map[string]string{
		"email": "x@example.com", "password": testUserPassword, "role": "superuser",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// Admin lists their own tenant
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/tenants/%s/users", testTenantID), adminBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]*users.User](t, rec)
	require.Len(t, list, 3)

	// Any other tenant is forbidden, even for admins
	rec = f.do(t, http.MethodGet, fmt.Sprintf("/tenants/%s/users", otherTenantID), adminBearer, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestAdminDeleteUser(t *testing.T) {
	f := setupTestFixture(t)
	admin := f.createTestUser(t, "u-admin", "admin@example.com", users.RoleAdmin, testTenantID)
	victim := f.createTestUser(t, "u-victim", "victim@example.com", users.RoleUser, testTenantID)
	outsider := f.createTestUser(t, "u-outsider", "outsider@example.com", users.RoleUser, otherTenantID)
	adminBearer := f.tokenFor(t, admin)

	// Cross-tenant deletion behaves as not found
	rec := f.do(t, http.MethodDelete, "/admin/users/"+outsider.ID, adminBearer, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/admin/users/"+victim.ID, adminBearer, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	_, err := f.userRepo.GetByID(context.Background(), victim.ID)
	require.Error(t, err)
}

func TestMessageFlow(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "u-1", "jane@example.com", users.RoleUser, testTenantID)
	outsider := f.createTestUser(t, "u-2", "other@example.com", users.RoleUser, otherTenantID)
	bearer := f.tokenFor(t, user)
	outsiderBearer := f.tokenFor(t, outsider)

	rec := f.do(t, http.MethodPost, "/messages", bearer, map[string]string{"content": "hello model"})
	require.Equal(t, http.StatusCreated, rec.Code)
	msg := decode[map[string]any](t, rec)
	require.Equal(t, "hello model", msg["content"])
	require.Contains(t, msg["response"], "[MOCK RESPONSE]")
	require.Equal(t, testTenantID, msg["tenant_id"])
	require.Equal(t, user.ID, msg["user_id"])

	// Empty content is rejected before reaching the provider
	rec = f.do(t, http.MethodPost, "/messages", bearer, map[string]string{"content": "  "})
	require.Equal(t, http.StatusBadRequest, rec.Code)

	// The author's tenant sees the message
	rec = f.do(t, http.MethodGet, "/messages", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[server.MessagePage](t, rec)
	require.Equal(t, 1, page.Total)
	require.Len(t, page.Items, 1)

	// Another tenant sees nothing
	rec = f.do(t, http.MethodGet, "/messages", outsiderBearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[server.MessagePage](t, rec)
	require.Equal(t, 0, page.Total)
	require.Empty(t, page.Items)
}

func TestMessagePagination(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "u-1", "jane@example.com", users.RoleUser, testTenantID)
	bearer := f.tokenFor(t, user)

	for i := 0; i < 5; i++ {
		rec := f.do(t, http.MethodPost, "/messages", bearer, map[string]string{
			"content": fmt.Sprintf("prompt %d", i),
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	rec := f.do(t, http.MethodGet, "/messages?skip=1&limit=2", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[server.MessagePage](t, rec)
	require.Equal(t, 5, page.Total)
	require.Len(t, page.Items, 2)
}

func TestMessageStream(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, "u-1", "jane@example.com", users.RoleUser, testTenantID)
	bearer := f.tokenFor(t, user)

	rec := f.do(t, http.MethodGet, "/messages/stream?content=hello", bearer, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	require.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))

	body := rec.Body.String()
	require.True(t, strings.HasPrefix(body, "data: "))
	require.True(t, strings.HasSuffix(body, "data: [DONE]\n\n"))

	// Reassemble the streamed chunks and compare with what was stored
	var streamed strings.Builder
	for _, frame := range strings.Split(body, "\n\n") {
		payload := strings.TrimPrefix(frame, "data: ")
		if frame == "" || payload == "[DONE]" {
			continue
		}
		streamed.WriteString(payload)
	}

	stored := f.messageRepo.All()
	require.Len(t, stored, 1)
	require.Equal(t, stored[0].Response, streamed.String())
	require.Equal(t, "hello", stored[0].Content)

	// Streaming without content is a bad request
	rec = f.do(t, http.MethodGet, "/messages/stream", bearer, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestFederatedRoutesDisabledWithoutIssuer(t *testing.T) {
	f := setupTestFixture(t)

	rec := f.do(t, http.MethodGet, "/auth/federated/login", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
}
