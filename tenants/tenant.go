package tenants

import "time"

// Tenant represents an isolated customer organisation. Every user and message
// belongs to exactly one tenant and no query may cross that boundary.
type Tenant struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}
