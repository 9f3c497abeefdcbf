package users

import (
	"fmt"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType represents a user role within a tenant
type RoleType string

const (
	RoleAdmin RoleType = "admin" // Can manage users within their tenant
	RoleUser  RoleType = "user"  // Regular user within a tenant
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r RoleType) bool {
	return r == RoleAdmin || r == RoleUser
}

type User struct {
	ID           string    `json:"id,omitempty"`         // Unique identifier for the user
	Email        string    `json:"email,omitempty"`      // User's email address, unique across the system
	PasswordHash string    `json:"-"`                    // Hashed version of the user's password - never serialize
	Role         RoleType  `json:"role,omitempty"`       // Role within the tenant
	TenantID     string    `json:"tenant_id,omitempty"`  // Tenant the user belongs to
	CreatedAt    time.Time `json:"created_at,omitempty"` // Date and time when the user registered
}

// IsAdmin returns true if the user has the tenant admin role
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// CheckPasswordHash verifies a plaintext password against a stored bcrypt
// hash. bcrypt's comparison is constant-time; neither input is ever logged.
func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}
