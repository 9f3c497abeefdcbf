package messages

import "context"

// Repo is the persistence boundary for messages. Every operation is
// tenant-scoped; there is no unscoped query.
type Repo interface {
	Create(ctx context.Context, message *Message) error
	ListByTenant(ctx context.Context, tenantID string, offset, limit int) (total int, page []*Message, err error)
}
