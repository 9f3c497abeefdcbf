package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Nayab-Gohar-95/llm-saas-backend/messages"
)

var _ messages.Repo = (*MessageRepo)(nil)

type MessageRepo struct {
	db *DB
}

func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (mr *MessageRepo) Create(ctx context.Context, msg *messages.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}

	query := `
        INSERT INTO messages (id, content, response, user_id, tenant_id, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)
    `

	_, err := mr.db.Pool.Exec(ctx, query,
		msg.ID,
		msg.Content,
		msg.Response,
		msg.UserID,
		msg.TenantID,
		msg.CreatedAt,
	)
	return err
}

func (mr *MessageRepo) ListByTenant(ctx context.Context, tenantID string, offset, limit int) (int, []*messages.Message, error) {
	var total int
	err := mr.db.Pool.QueryRow(ctx,
		`SELECT count(*) FROM messages WHERE tenant_id = $1`, tenantID).Scan(&total)
	if err != nil {
		return 0, nil, err
	}

	query := `
        SELECT id, content, response, user_id, tenant_id, created_at
        FROM messages
        WHERE tenant_id = $1
        ORDER BY created_at DESC
        OFFSET $2 LIMIT $3
    `

	rows, err := mr.db.Pool.Query(ctx, query, tenantID, offset, limit)
	if err != nil {
		return 0, nil, err
	}
	defer rows.Close()

	page := make([]*messages.Message, 0)
	for rows.Next() {
		var msg messages.Message
		if err := rows.Scan(&msg.ID, &msg.Content, &msg.Response, &msg.UserID, &msg.TenantID, &msg.CreatedAt); err != nil {
			return 0, nil, err
		}
		page = append(page, &msg)
	}
	return total, page, rows.Err()
}
