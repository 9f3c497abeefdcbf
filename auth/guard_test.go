package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Nayab-Gohar-95/llm-saas-backend/auth"
	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
	"github.com/Nayab-Gohar-95/llm-saas-backend/tenants"
	tenantrepofakes "github.com/Nayab-Gohar-95/llm-saas-backend/tenants/repofakes"
	"github.com/Nayab-Gohar-95/llm-saas-backend/token"
	"github.com/Nayab-Gohar-95/llm-saas-backend/users"
	fakeuserrepo "github.com/Nayab-Gohar-95/llm-saas-backend/users/repofake"
)

const (
	secretStr        = "test-secret-1234"
	issuer           = "com.testissuer"
	testTenantID     = "tenant-1"
	testUserID       = "user-1"
	testUserEmail    = "john.doe@example.com"
	testUserPassword = "Password123"
)

// testFixture holds all test dependencies
type testFixture struct {
	userRepo   users.UserRepo
	tenantRepo tenants.Repo
	codec      *token.Codec
	guard      *auth.Guard
}

func setupTestFixture(t *testing.T) *testFixture {
	t.Helper()

	ur := fakeuserrepo.NewFakeUserRepo()
	tr := tenantrepofakes.NewFakeTenantRepo()

	err := tr.Create(context.Background(), &tenants.Tenant{ID: testTenantID, Name: "Test Tenant"})
	require.NoError(t, err)

	codec := token.NewCodec(secretStr, issuer)
	guard, err := auth.NewGuard(auth.Repos{Users: ur, Tenants: tr}, codec, time.Hour)
	require.NoError(t, err)

	return &testFixture{
		userRepo:   ur,
		tenantRepo: tr,
		codec:      codec,
		guard:      guard,
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

func TestNewGuardValidation(t *testing.T) {
	ur := fakeuserrepo.NewFakeUserRepo()
	tr := tenantrepofakes.NewFakeTenantRepo()
	codec := token.NewCodec(secretStr, issuer)

	_, err := auth.NewGuard(auth.Repos{Tenants: tr}, codec, time.Hour)
	require.Error(t, err)

	_, err = auth.NewGuard(auth.Repos{Users: ur}, codec, time.Hour)
	require.Error(t, err)

	_, err = auth.NewGuard(auth.Repos{Users: ur, Tenants: tr}, nil, time.Hour)
	require.Error(t, err)

	_, err = auth.NewGuard(auth.Repos{Users: ur, Tenants: tr}, codec, 0)
	require.Error(t, err)
}

func TestLoginAndAuthenticate(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, testUserID, testUserEmail, users.RoleUser, testTenantID)

	signed, user, err := f.guard.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)
	require.NotEmpty(t, signed)
	require.Equal(t, testUserID, user.ID)

	principal, err := f.guard.Authenticate(context.Background(), signed)
	require.NoError(t, err)
	require.Equal(t, testUserID, principal.UserID)
	require.Equal(t, testTenantID, principal.TenantID)
	require.Equal(t, users.RoleUser, principal.Role)
	require.False(t, principal.IsAdmin())
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, testUserID, testUserEmail, users.RoleUser, testTenantID)

	_, _, wrongPassword := f.guard.Login(context.Background(), testUserEmail, "WrongPassword1")
	_, _, unknownEmail := f.guard.Login(context.Background(), "nobody@example.com", testUserPassword)

	require.ErrorIs(t, wrongPassword, apperrors.ErrInvalidCredentials)
	require.ErrorIs(t, unknownEmail, apperrors.ErrInvalidCredentials)
	require.Equal(t, wrongPassword.Error(), unknownEmail.Error())
}

func TestAuthenticateDeletedUser(t *testing.T) {
	f := setupTestFixture(t)
	f.createTestUser(t, testUserID, testUserEmail, users.RoleUser, testTenantID)

	signed, _, err := f.guard.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	// The credential is still cryptographically valid after deletion but must
	// stop granting access on the very next request.
	require.NoError(t, f.userRepo.Delete(context.Background(), testUserID))

	_, err = f.guard.Authenticate(context.Background(), signed)
	require.ErrorIs(t, err, apperrors.ErrRevokedOrDeleted)
}

func TestAuthenticateStaleTenant(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, testUserID, testUserEmail, users.RoleUser, testTenantID)

	signed, err := f.guard.IssueFor(user)
	require.NoError(t, err)

	// Move the user to another tenant after the credential was minted
	require.NoError(t, f.userRepo.Delete(context.Background(), testUserID))
	f.createTestUser(t, testUserID, testUserEmail, users.RoleUser, "tenant-2")

	_, err = f.guard.Authenticate(context.Background(), signed)
	require.ErrorIs(t, err, apperrors.ErrStaleCredential)
}

func TestAuthenticateStaleRole(t *testing.T) {
	f := setupTestFixture(t)
	user := f.createTestUser(t, testUserID, testUserEmail, users.RoleAdmin, testTenantID)

	signed, err := f.guard.IssueFor(user)
	require.NoError(t, err)

	// Demote the user after the credential was minted
	require.NoError(t, f.userRepo.Delete(context.Background(), testUserID))
	f.createTestUser(t, testUserID, testUserEmail, users.RoleUser, testTenantID)

	_, err = f.guard.Authenticate(context.Background(), signed)
	require.ErrorIs(t, err, apperrors.ErrStaleCredential)
}

func TestAuthenticateExpiredCredential(t *testing.T) {
	issuedAt := time.Now()
	ur := fakeuserrepo.NewFakeUserRepo()
	tr := tenantrepofakes.NewFakeTenantRepo()

	codec := token.NewCodec(secretStr, issuer, token.WithNowTime(func() time.Time { return issuedAt }))
	guard, err := auth.NewGuard(auth.Repos{Users: ur, Tenants: tr}, codec, time.Hour)
	require.NoError(t, err)

	passwordHash, err := users.HashPassword(testUserPassword)
	require.NoError(t, err)
	require.NoError(t, ur.Create(context.Background(), &users.User{
		ID: testUserID, Email: testUserEmail, PasswordHash: passwordHash,
		Role: users.RoleUser, TenantID: testTenantID,
	}))

	signed, _, err := guard.Login(context.Background(), testUserEmail, testUserPassword)
	require.NoError(t, err)

	lateCodec := token.NewCodec(secretStr, issuer, token.WithNowTime(func() time.Time {
		return issuedAt.Add(2 * time.Hour)
	}))
	lateGuard, err := auth.NewGuard(auth.Repos{Users: ur, Tenants: tr}, lateCodec, time.Hour)
	require.NoError(t, err)

	_, err = lateGuard.Authenticate(context.Background(), signed)
	require.ErrorIs(t, err, apperrors.ErrTokenExpired)
}

func TestRequireAdmin(t *testing.T) {
	f := setupTestFixture(t)

	admin := &auth.Principal{UserID: "a", TenantID: testTenantID, Role: users.RoleAdmin}
	regular := &auth.Principal{UserID: "b", TenantID: testTenantID, Role: users.RoleUser}

	got, err := f.guard.RequireAdmin(admin)
	require.NoError(t, err)
	require.Equal(t, admin, got)

	_, err = f.guard.RequireAdmin(regular)
	require.ErrorIs(t, err, apperrors.ErrForbidden)

	_, err = f.guard.RequireAdmin(nil)
	require.ErrorIs(t, err, apperrors.ErrForbidden)
}
