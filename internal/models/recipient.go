package models

import "time"

// Recipient is a person who receives expiry notifications. Deactivation is
// the preferred way to silence a recipient; deleting the row loses nothing
// in the audit trail because notification_log stores the email, not the id.
type Recipient struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
