package messages

import "time"

// Message is one stored prompt/response exchange. TenantID and UserID are
// always copied from the authenticated principal, never from client input.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Response  string    `json:"response"`
	UserID    string    `json:"user_id"`
	TenantID  string    `json:"tenant_id"`
	CreatedAt time.Time `json:"created_at"`
}
