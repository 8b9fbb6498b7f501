package audit

import (
	"context"
	"time"

	"github.com/decoydrop/decoydrop/internal/db/models"
)

// EventWriter is the slice of the event repository the shipping decorator
// needs.
type EventWriter interface {
	CreateEvent(ctx context.Context, event *models.AuditEvent) error
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// ShippingStore decorates an event store so every synthetic event persisted to
// the database is also forwarded to the configured shippers. Shipping is
// best-effort: a shipper failure never fails the database write, because the
// decoy table is the source of truth for what an intruder will see.
type ShippingStore struct {
	inner   EventWriter
	shipper Shipper
}

// NewShippingStore wraps store. A nil shipper returns the store unchanged
// behavior-wise but is still valid.
func NewShippingStore(inner EventWriter, shipper Shipper) *ShippingStore {
	return &ShippingStore{inner: inner, shipper: shipper}
}

// CreateEvent persists the event, then ships it.
func (s *ShippingStore) CreateEvent(ctx context.Context, event *models.AuditEvent) error {
	if err := s.inner.CreateEvent(ctx, event); err != nil {
		return err
	}
	if s.shipper != nil {
		_ = s.shipper.Ship(ctx, RecordFromEvent(event))
	}
	return nil
}

// DeleteEventsBefore passes through to the underlying store. Retention only
// applies to the decoy table; shipped records belong to whoever received them.
func (s *ShippingStore) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	return s.inner.DeleteEventsBefore(ctx, cutoff)
}
