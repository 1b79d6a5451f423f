package entity

import "time"

// Organization is the tenant boundary. Every other entity hangs off an
// organization and is never visible across organizations.
type Organization struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Subdomain string    `json:"subdomain"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
