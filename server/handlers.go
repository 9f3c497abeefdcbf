package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
	"github.com/Nayab-Gohar-95/llm-saas-backend/tenants"
	"github.com/Nayab-Gohar-95/llm-saas-backend/users"
)

// CreateTenantRequest is the payload for tenant onboarding
type CreateTenantRequest struct {
	Name string `json:"name"`
}

// RegisterRequest is the payload for self-registration into a tenant
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	TenantID string `json:"tenant_id"`
}

// LoginRequest is the payload for password login
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CreateUserRequest is the payload for admin user creation. The tenant is
// always the admin's own; a tenant in the payload would be ignored anyway so
// it is not part of the contract.
type CreateUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// TokenResponse is returned by login flows
type TokenResponse struct {
	AccessToken string      `json:"access_token"`
	TokenType   string      `json:"token_type"`
	ExpiresIn   int         `json:"expires_in"`
	User        *users.User `json:"user"`
}

// HealthHandler reports liveness
func (s *Server) HealthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// CreateTenantHandler onboards a new tenant. Names are unique; a duplicate
// returns 409.
func (s *Server) CreateTenantHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateTenantRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		req.Name = strings.TrimSpace(req.Name)
		if req.Name == "" {
			writeJSONError(w, http.StatusBadRequest, "name is required")
			return
		}

		tenant := &tenants.Tenant{Name: req.Name}
		if err := s.repos.Tenants.Create(r.Context(), tenant); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, tenant)
	}
}

// RegisterHandler self-registers a user into an existing tenant. The role is
// always "user"; elevated roles are created through the admin route.
func (s *Server) RegisterHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req RegisterRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		email, err := validateNewUser(req.Email, req.Password)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := s.createUser(r, email, req.Password, users.RoleUser, req.TenantID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

// LoginHandler exchanges email/password for a bearer credential. Unknown
// email and wrong password are indistinguishable in the response.
func (s *Server) LoginHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req LoginRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		signed, user, err := s.guard.Login(r.Context(), req.Email, req.Password)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, TokenResponse{
			AccessToken: signed,
			TokenType:   "bearer",
			ExpiresIn:   int(s.guard.TokenTTL().Seconds()),
			User:        user,
		})
	}
}

// MeHandler returns the authenticated user's profile
func (s *Server) MeHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())

		user, err := s.repos.Users.GetByID(r.Context(), principal.UserID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, user)
	}
}

// AdminCreateUserHandler creates a user with any role inside the admin's own
// tenant. The target tenant is never taken from the payload.
func (s *Server) AdminCreateUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())

		var req CreateUserRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid request body")
			return
		}

		role := users.RoleType(req.Role)
		if req.Role == "" {
			role = users.RoleUser
		}
		if !users.ValidRole(role) {
			writeJSONError(w, http.StatusBadRequest, "invalid role")
			return
		}

		email, err := validateNewUser(req.Email, req.Password)
		if err != nil {
			writeJSONError(w, http.StatusBadRequest, err.Error())
			return
		}

		user, err := s.createUser(r, email, req.Password, role, principal.TenantID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, user)
	}
}

// AdminDeleteUserHandler removes a user from the admin's tenant. Any
// outstanding credential for the user stops working on the next request.
func (s *Server) AdminDeleteUserHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())
		userID := mux.Vars(r)["user_id"]

		user, err := s.repos.Users.GetByID(r.Context(), userID)
		if err != nil {
			writeError(w, err)
			return
		}
		if user.TenantID != principal.TenantID {
			// Cross-tenant lookups behave as if the user does not exist
			writeError(w, apperrors.ErrUserNotFound)
			return
		}

		if err := s.repos.Users.Delete(r.Context(), userID); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

// ListTenantUsersHandler lists the users of a tenant. Admins may only list
// their own tenant; any other tenant_id is forbidden.
func (s *Server) ListTenantUsersHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		principal := PrincipalFromContext(r.Context())
		tenantID := mux.Vars(r)["tenant_id"]

		if tenantID != principal.TenantID {
			writeError(w, apperrors.ErrForbidden)
			return
		}

		list, err := s.repos.Users.ListByTenant(r.Context(), tenantID)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// validateNewUser normalises the email and applies the password policy,
// returning the email ready for storage.
func validateNewUser(email, password string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return "", fmt.Errorf("a valid email is required")
	}
	if err := users.ValidatePasswordStrength(password); err != nil {
		return "", err
	}
	return email, nil
}

func (s *Server) createUser(r *http.Request, email, password string, role users.RoleType, tenantID string) (*users.User, error) {
	// The tenant must exist before a user can be attached to it
	if _, err := s.repos.Tenants.Get(r.Context(), tenantID); err != nil {
		return nil, err
	}

	hash, err := users.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &users.User{
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		TenantID:     tenantID,
	}
	if err := s.repos.Users.Create(r.Context(), user); err != nil {
		return nil, err
	}
	return user, nil
}
