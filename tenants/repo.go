package tenants

import "context"

type Repo interface {
	Create(ctx context.Context, tenant *Tenant) error
	Get(ctx context.Context, tenantID string) (*Tenant, error)
	GetByName(ctx context.Context, name string) (*Tenant, error)
	List(ctx context.Context, offset, limit int) ([]*Tenant, error)
}
