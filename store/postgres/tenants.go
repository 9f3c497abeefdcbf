package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
	"github.com/Nayab-Gohar-95/llm-saas-backend/tenants"
)

var _ tenants.Repo = (*TenantRepo)(nil)

type TenantRepo struct {
	db *DB
}

func NewTenantRepo(db *DB) *TenantRepo {
	return &TenantRepo{db: db}
}

func (tr *TenantRepo) Create(ctx context.Context, tenant *tenants.Tenant) error {
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	if tenant.CreatedAt.IsZero() {
		tenant.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO tenants (id, name, created_at)
        VALUES ($1, $2, $3)
    `

	_, err := tr.db.Pool.Exec(ctx, query, tenant.ID, tenant.Name, tenant.CreatedAt)
	if isUniqueViolation(err) {
		return apperrors.ErrDuplicateTenant
	}
	return err
}

func (tr *TenantRepo) Get(ctx context.Context, tenantID string) (*tenants.Tenant, error) {
	query := `
        SELECT id, name, created_at
        FROM tenants
        WHERE id = $1
    `

	var tenant tenants.Tenant
	err := tr.db.Pool.QueryRow(ctx, query, tenantID).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, apperrors.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}

	return &tenant, nil
}

func (tr *TenantRepo) GetByName(ctx context.Context, name string) (*tenants.Tenant, error) {
	query := `
        SELECT id, name, created_at
        FROM tenants
        WHERE name = $1
    `

	var tenant tenants.Tenant
	err := tr.db.Pool.QueryRow(ctx, query, name).Scan(
		&tenant.ID,
		&tenant.Name,
		&tenant.CreatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, apperrors.ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}

	return &tenant, nil
}

func (tr *TenantRepo) List(ctx context.Context, offset, limit int) ([]*tenants.Tenant, error) {
	query := `
        SELECT id, name, created_at
        FROM tenants
        ORDER BY created_at
        OFFSET $1 LIMIT $2
    `

	rows, err := tr.db.Pool.Query(ctx, query, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]*tenants.Tenant, 0)
	for rows.Next() {
		var tenant tenants.Tenant
		if err := rows.Scan(&tenant.ID, &tenant.Name, &tenant.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, &tenant)
	}
	return list, rows.Err()
}
