// refdata.go declares the narrow persistence contracts the simulator depends on. The
// simulator never touches SQL directly: it reads bounded reference samples through these
// interfaces and writes events back through EventStore, which keeps every loop testable
// against in-memory fakes.
package simulator

import (
	"context"
	"time"

	"github.com/decoydrop/decoydrop/internal/db/models"
)

// referenceWindow bounds how many recent users/files are sampled for event
// attribution. A small window keeps attribution focused on accounts that look
// recently active without scanning the whole dataset.
const referenceWindow = 10

// UserDirectory provides read-only access to decoy user accounts.
// An empty result is a normal outcome, not an error.
type UserDirectory interface {
	// RecentUsers returns up to limit users, newest first.
	RecentUsers(ctx context.Context, limit int) ([]*models.User, error)
}

// FileLinkDirectory provides read-only access to bait file links.
type FileLinkDirectory interface {
	// RecentFileLinks returns up to limit file links, newest first.
	RecentFileLinks(ctx context.Context, limit int) ([]*models.FileLink, error)

	// AllFileLinks returns every file link. Used by attack injection, which
	// targets the full bait set rather than a recency window.
	AllFileLinks(ctx context.Context) ([]*models.FileLink, error)
}

// EventStore is the simulator's write target.
type EventStore interface {
	// CreateEvent persists one audit event. Each write is independent and
	// atomic at the store level; no multi-event transactions exist.
	CreateEvent(ctx context.Context, event *models.AuditEvent) error

	// DeleteEventsBefore bulk-deletes events with a timestamp older than
	// cutoff and returns the number of rows removed.
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
