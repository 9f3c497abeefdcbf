package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
	"github.com/Nayab-Gohar-95/llm-saas-backend/users"
)

var _ users.UserRepo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

func (ur *UserRepo) Create(ctx context.Context, user *users.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	user.Email = strings.ToLower(user.Email)

	query := `
        INSERT INTO users (id, email, hashed_password, role, tenant_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	_, err := ur.db.Pool.Exec(ctx, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		string(user.Role),
		user.TenantID,
		user.CreatedAt,
	)
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicateEmail
	}
	return err
}

func (ur *UserRepo) Delete(ctx context.Context, id string) error {
	tag, err := ur.db.Pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrUserNotFound
	}
	return nil
}

func (ur *UserRepo) GetByEmail(ctx context.Context, email string) (*users.User, error) {
	query := `
        SELECT id, email, hashed_password, role, tenant_id, created_at
        FROM users
        WHERE email = $1
    `
	return ur.scanOne(ctx, query, strings.ToLower(email))
}

func (ur *UserRepo) GetByID(ctx context.Context, id string) (*users.User, error) {
	query := `
        SELECT id, email, hashed_password, role, tenant_id, created_at
        FROM users
        WHERE id = $1
    `
	return ur.scanOne(ctx, query, id)
}

func (ur *UserRepo) ListByTenant(ctx context.Context, tenantID string) ([]*users.User, error) {
	query := `
        SELECT id, email, hashed_password, role, tenant_id, created_at
        FROM users
        WHERE tenant_id = $1
        ORDER BY created_at
    `

	rows, err := ur.db.Pool.Query(ctx, query, tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*users.User, 0)
	for rows.Next() {
		var user users.User
		var role string
		if err := rows.Scan(&user.ID, &user.Email, &user.PasswordHash, &role, &user.TenantID, &user.CreatedAt); err != nil {
			return nil, err
		}
		user.Role = users.RoleType(role)
		list = append(list, &user)
	}
	return list, rows.Err()
}

func (ur *UserRepo) scanOne(ctx context.Context, query string, arg any) (*users.User, error) {
	var user users.User
	var role string
	err := ur.db.Pool.QueryRow(ctx, query, arg).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&role,
		&user.TenantID,
		&user.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, apperrors.ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	user.Role = users.RoleType(role)
	return &user, nil
}
