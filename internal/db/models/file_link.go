// Package models - file_link.go defines the FileLink model: a bait "shared file" with a
// download token, fabricated size and checksum, and an expiry date. No file content ever
// exists behind a link.
package models

import "time"

// FileLink represents a shared-file entry exposed by the decoy application
type FileLink struct {
	ID        string    `json:"id" db:"id"`
	OwnerID   *string   `json:"owner_id,omitempty" db:"owner_id"` // Nullable; owning decoy user
	FileName  string    `json:"file_name" db:"file_name"`
	SizeBytes int64     `json:"size_bytes" db:"size_bytes"`
	Checksum  string    `json:"checksum" db:"checksum"` // SHA-256 hex of the link's fabricated identity
	Token     string    `json:"token" db:"token"`       // Opaque download-URL token
	ExpiresAt time.Time `json:"expires_at" db:"expires_at"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// IsExpired reports whether the link's advertised expiry has passed.
func (f *FileLink) IsExpired() bool {
	return time.Now().After(f.ExpiresAt)
}
