// audit_event_repository.go implements AuditEventRepository, the write target for the
// simulator and the query surface for the admin audit UI. Events are insert-only; the
// only delete path is the bulk retention sweep.
package repositories

import (
	"context"
	"fmt"
	"time"

	"database/sql"

	"github.com/decoydrop/decoydrop/internal/db/models"
	"github.com/google/uuid"
)

// AuditEventRepository handles audit event database operations
type AuditEventRepository struct {
	db *sql.DB
}

// NewAuditEventRepository creates a new AuditEventRepository
func NewAuditEventRepository(db *sql.DB) *AuditEventRepository {
	return &AuditEventRepository{db: db}
}

// EventFilters contains optional filters for querying audit events
type EventFilters struct {
	EventType *string
	ActorID   *string
	TargetID  *string
	StartDate *time.Time
	EndDate   *time.Time
}

// CreateEvent persists one audit event. ID and Timestamp are assigned here
// when the caller left them zero.
func (r *AuditEventRepository) CreateEvent(ctx context.Context, event *models.AuditEvent) error {
	if event.ID == "" {
		event.ID = uuid.New().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	query := `
		INSERT INTO audit_events (id, timestamp, event_type, actor_id, target_id, origin_address, client_signature, detail)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.db.ExecContext(ctx, query,
		event.ID,
		event.Timestamp,
		event.EventType,
		event.ActorID,
		event.TargetID,
		event.OriginAddress,
		event.ClientSignature,
		event.Detail,
	)

	return err
}

// ListEvents retrieves audit events with optional filters and pagination,
// newest first, returning the page plus the total matching count.
func (r *AuditEventRepository) ListEvents(ctx context.Context, filters EventFilters, limit, offset int) ([]*models.AuditEvent, int, error) {
	countQuery := `SELECT COUNT(*) FROM audit_events WHERE 1=1`
	query := `
		SELECT id, timestamp, event_type, actor_id, target_id, origin_address, client_signature, detail
		FROM audit_events
		WHERE 1=1
	`

	args := make([]interface{}, 0)
	paramIndex := 1

	if filters.EventType != nil {
		countQuery += fmt.Sprintf(` AND event_type = $%d`, paramIndex)
		query += fmt.Sprintf(` AND event_type = $%d`, paramIndex)
		args = append(args, *filters.EventType)
		paramIndex++
	}

	if filters.ActorID != nil {
		countQuery += fmt.Sprintf(` AND actor_id = $%d`, paramIndex)
		query += fmt.Sprintf(` AND actor_id = $%d`, paramIndex)
		args = append(args, *filters.ActorID)
		paramIndex++
	}

	if filters.TargetID != nil {
		countQuery += fmt.Sprintf(` AND target_id = $%d`, paramIndex)
		query += fmt.Sprintf(` AND target_id = $%d`, paramIndex)
		args = append(args, *filters.TargetID)
		paramIndex++
	}

	if filters.StartDate != nil {
		countQuery += fmt.Sprintf(` AND timestamp >= $%d`, paramIndex)
		query += fmt.Sprintf(` AND timestamp >= $%d`, paramIndex)
		args = append(args, *filters.StartDate)
		paramIndex++
	}

	if filters.EndDate != nil {
		countQuery += fmt.Sprintf(` AND timestamp <= $%d`, paramIndex)
		query += fmt.Sprintf(` AND timestamp <= $%d`, paramIndex)
		args = append(args, *filters.EndDate)
		paramIndex++
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query += fmt.Sprintf(` ORDER BY timestamp DESC LIMIT $%d OFFSET $%d`, paramIndex, paramIndex+1)
	args = append(args, limit, offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	events := make([]*models.AuditEvent, 0)
	for rows.Next() {
		event := &models.AuditEvent{}
		if err := rows.Scan(
			&event.ID,
			&event.Timestamp,
			&event.EventType,
			&event.ActorID,
			&event.TargetID,
			&event.OriginAddress,
			&event.ClientSignature,
			&event.Detail,
		); err != nil {
			return nil, 0, err
		}
		events = append(events, event)
	}

	return events, total, rows.Err()
}

// CountByType returns the number of events per event type, for dashboard stats.
func (r *AuditEventRepository) CountByType(ctx context.Context) (map[string]int64, error) {
	query := `SELECT event_type, COUNT(*) FROM audit_events GROUP BY event_type`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var eventType string
		var count int64
		if err := rows.Scan(&eventType, &count); err != nil {
			return nil, err
		}
		counts[eventType] = count
	}

	return counts, rows.Err()
}

// DeleteEventsBefore bulk-deletes events older than cutoff and returns the
// number of rows removed. Used by the simulator's retention sweep.
func (r *AuditEventRepository) DeleteEventsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `DELETE FROM audit_events WHERE timestamp < $1`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
