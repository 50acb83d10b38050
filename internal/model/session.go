package model

import "time"

// AdminSession contains the data stored with an admin session token.
type AdminSession struct {
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
