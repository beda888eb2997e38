package entity

import "time"

// User mirrors an identity-provider account. Only webhooks create or change it.
type User struct {
	Id        string
	ClerkId   string
	Email     string
	Metadata  map[string]interface{}
	CreatedAt time.Time
	UpdatedAt time.Time
}
