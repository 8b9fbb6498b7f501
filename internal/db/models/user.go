// Package models - user.go defines the User model for decoy accounts. Users exist only
// to make the honeypot's directory listings and audit trail look inhabited; none of them
// can authenticate.
package models

import "time"

// User represents a decoy account in the system
type User struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	Name      string    `json:"name" db:"name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
