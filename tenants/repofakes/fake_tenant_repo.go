package tenantrepofakes

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/Nayab-Gohar-95/llm-saas-backend/internal/errors"
	"github.com/Nayab-Gohar-95/llm-saas-backend/tenants"
)

var _ tenants.Repo = (*FakeTenantRepo)(nil)

type FakeTenantRepo struct {
	tenants map[string]*tenants.Tenant
	names   map[string]string // name to tenant id
	lock    sync.RWMutex
}

func NewFakeTenantRepo() *FakeTenantRepo {
	return &FakeTenantRepo{
		tenants: make(map[string]*tenants.Tenant),
		names:   make(map[string]string),
	}
}

func (tr *FakeTenantRepo) Create(_ context.Context, tenant *tenants.Tenant) error {
	tr.lock.Lock()
	defer tr.lock.Unlock()

	if _, ok := tr.names[tenant.Name]; ok {
		return apperrors.ErrDuplicateTenant
	}
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}
	copied := *tenant
	tr.tenants[copied.ID] = &copied
	tr.names[copied.Name] = copied.ID
	return nil
}

func (tr *FakeTenantRepo) Get(_ context.Context, tenantID string) (*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	tenant, ok := tr.tenants[tenantID]
	if !ok {
		return nil, apperrors.ErrTenantNotFound
	}
	copied := *tenant
	return &copied, nil
}

func (tr *FakeTenantRepo) GetByName(_ context.Context, name string) (*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	id, ok := tr.names[name]
	if !ok {
		return nil, apperrors.ErrTenantNotFound
	}
	copied := *tr.tenants[id]
	return &copied, nil
}

func (tr *FakeTenantRepo) List(_ context.Context, offset, limit int) ([]*tenants.Tenant, error) {
	tr.lock.RLock()
	defer tr.lock.RUnlock()

	all := make([]*tenants.Tenant, 0, len(tr.tenants))
	for _, t := range tr.tenants {
		copied := *t
		all = append(all, &copied)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })

	if offset >= len(all) {
		return []*tenants.Tenant{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}
