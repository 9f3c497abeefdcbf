// Package auth resolves bearer credentials into request-scoped principals and
// enforces role checks. A credential is cryptographically valid until expiry,
// so every request re-validates the subject against persistence; that fresh
// existence check is what lets a deleted or changed user take effect before
// the token expires.
package auth

import (
	"context"
	"time"

	"github.com/pkg/errors"

	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
	"github.com/Nayab-Gohar-95/llm-saas-backend/tenants"
	"github.com/Nayab-Gohar-95/llm-saas-backend/token"
	"github.com/Nayab-Gohar-95/llm-saas-backend/users"
)

// Principal is the resolved identity for one request. It is derived from a
// verified credential plus a persistence check and is never cached across
// requests.
type Principal struct {
	UserID   string
	TenantID string
	Role     users.RoleType
}

// IsAdmin returns true if the principal carries the admin role
func (p *Principal) IsAdmin() bool {
	return p.Role == users.RoleAdmin
}

// Repos holds all repository dependencies for the Guard
type Repos struct {
	Users   users.UserRepo // Repository for user data
	Tenants tenants.Repo   // Repository for tenant data
}

// Guard authenticates bearer credentials and produces principals.
type Guard struct {
	repos    Repos
	codec    *token.Codec
	tokenTTL time.Duration
}

// NewGuard initializes a new Guard with required dependencies.
func NewGuard(repos Repos, codec *token.Codec, tokenTTL time.Duration) (*Guard, error) {
	if repos.Users == nil {
		return nil, errors.New("[NewGuard] Users repo is required")
	}
	if repos.Tenants == nil {
		return nil, errors.New("[NewGuard] Tenants repo is required")
	}
	if codec == nil {
		return nil, errors.New("[NewGuard] codec is required")
	}
	if tokenTTL <= 0 {
		return nil, errors.New("[NewGuard] tokenTTL must be positive")
	}

	return &Guard{
		repos:    repos,
		codec:    codec,
		tokenTTL: tokenTTL,
	}, nil
}

// TokenTTL returns the configured credential lifetime.
func (g *Guard) TokenTTL() time.Duration {
	return g.tokenTTL
}

// Authenticate verifies the credential, re-checks the subject against
// persistence, and cross-checks that the tenant and role embedded in the
// credential still match the stored user. A mismatch means the credential
// predates a tenant move or role change and must not grant the old privilege.
func (g *Guard) Authenticate(ctx context.Context, bearer string) (*Principal, error) {
	claims, err := g.codec.Verify(bearer)
	if err != nil {
		return nil, err
	}

	user, err := g.repos.Users.GetByID(ctx, claims.Subject)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.ErrRevokedOrDeleted
		}
		return nil, errors.Wrap(err, "[Authenticate] user lookup failed")
	}

	if user.TenantID != claims.TenantID || user.Role != claims.Role {
		return nil, apperrors.ErrStaleCredential
	}

	return &Principal{
		UserID:   user.ID,
		TenantID: user.TenantID,
		Role:     user.Role,
	}, nil
}

// RequireAdmin narrows a principal to the admin role.
func (g *Guard) RequireAdmin(principal *Principal) (*Principal, error) {
	if principal == nil || !principal.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	return principal, nil
}

// Login verifies an email/password pair and mints a fresh credential.
// Lookup failure and password mismatch are indistinguishable to the caller.
func (g *Guard) Login(ctx context.Context, email, password string) (string, *users.User, error) {
	user, err := g.repos.Users.GetByEmail(ctx, email)
	if err != nil || !users.CheckPasswordHash(password, user.PasswordHash) {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	signed, err := g.codec.Issue(user.ID, user.TenantID, user.Role, g.tokenTTL)
	if err != nil {
		return "", nil, errors.Wrap(err, "[Login] failed to issue credential")
	}
	return signed, user, nil
}

// IssueFor mints a credential for an already-verified user record. Used by the
// federated login flow after the upstream identity has been mapped to a local
// user; tenant and role always come from the stored record.
func (g *Guard) IssueFor(user *users.User) (string, error) {
	signed, err := g.codec.Issue(user.ID, user.TenantID, user.Role, g.tokenTTL)
	if err != nil {
		return "", errors.Wrap(err, "[IssueFor] failed to issue credential")
	}
	return signed, nil
}
