package fakemessagerepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Nayab-Gohar-95/llm-saas-backend/messages"
)

var _ messages.Repo = (*FakeMessageRepo)(nil)

type FakeMessageRepo struct {
	messages []*messages.Message
	lock     sync.RWMutex
}

func NewFakeMessageRepo() *FakeMessageRepo {
	return &FakeMessageRepo{}
}

func (mr *FakeMessageRepo) Create(_ context.Context, message *messages.Message) error {
	mr.lock.Lock()
	defer mr.lock.Unlock()

	if message.ID == "" {
		message.ID = uuid.New().String()
	}
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}
	copied := *message
	mr.messages = append(mr.messages, &copied)
	return nil
}

func (mr *FakeMessageRepo) ListByTenant(_ context.Context, tenantID string, offset, limit int) (int, []*messages.Message, error) {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	scoped := make([]*messages.Message, 0)
	for _, m := range mr.messages {
		if m.TenantID != tenantID {
			continue
		}
		copied := *m
		scoped = append(scoped, &copied)
	}
	// Newest first, matching the postgres ordering
	sort.Slice(scoped, func(i, j int) bool { return scoped[i].CreatedAt.After(scoped[j].CreatedAt) })

	total := len(scoped)
	if offset >= total {
		return total, []*messages.Message{}, nil
	}
	end := offset + limit
	if limit <= 0 || end > total {
		end = total
	}
	return total, scoped[offset:end], nil
}

// All returns every stored message regardless of tenant. Test helper only.
func (mr *FakeMessageRepo) All() []*messages.Message {
	mr.lock.RLock()
	defer mr.lock.RUnlock()

	all := make([]*messages.Message, 0, len(mr.messages))
	for _, m := range mr.messages {
		copied := *m
		all = append(all, &copied)
	}
	return all
}
