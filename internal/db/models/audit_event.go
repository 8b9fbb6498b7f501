// Package models - audit_event.go defines the AuditEvent model, the unit of record for
// fabricated honeypot activity, capturing event type, actor, target file link, spoofed
// origin address, and client signature. Genuine operator actions are never stored here;
// they go out through the audit shippers only.
package models

import "time"

// Audit event types. Values are stored verbatim in the event_type column and
// returned verbatim over the API.
const (
	EventLogin          = "login"
	EventDownload       = "download"
	EventFailedLogin    = "failedLogin"
	EventFailedDownload = "failedDownload"
)

// AuditEvent represents a single audit log entry. Events are immutable once
// created: there is no update path, only bulk retention deletion.
type AuditEvent struct {
	ID              string    `json:"id" db:"id"`
	Timestamp       time.Time `json:"timestamp" db:"timestamp"`
	EventType       string    `json:"event_type" db:"event_type"`             // login, download, failedLogin, failedDownload
	ActorID         *string   `json:"actor_id,omitempty" db:"actor_id"`       // Nullable; nil means anonymous
	TargetID        *string   `json:"target_id,omitempty" db:"target_id"`     // Nullable reference to a FileLink; nil means not file-related
	OriginAddress   string    `json:"origin_address" db:"origin_address"`     // IPv4 dotted-quad
	ClientSignature string    `json:"client_signature" db:"client_signature"` // Browser user-agent string
	Detail          *string   `json:"detail,omitempty" db:"detail"`           // Optional human-readable annotation
}

// IsFailure reports whether the event records a failed action.
func (e *AuditEvent) IsFailure() bool {
	return e.EventType == EventFailedLogin || e.EventType == EventFailedDownload
}

// IsLoginType reports whether the event is a login or failed login. Login-type
// events must always carry a non-nil ActorID.
func (e *AuditEvent) IsLoginType() bool {
	return e.EventType == EventLogin || e.EventType == EventFailedLogin
}

// ValidEventType reports whether t is one of the recognised event types.
func ValidEventType(t string) bool {
	switch t {
	case EventLogin, EventDownload, EventFailedLogin, EventFailedDownload:
		return true
	}
	return false
}
