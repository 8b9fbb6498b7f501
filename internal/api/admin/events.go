// events.go implements read-only handlers over the synthetic audit trail.
// This is the operator's window into what an intruder would see, plus the
// aggregate stats used to sanity-check that the simulator's mix of event
// types looks believable.
package admin

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/decoydrop/decoydrop/internal/db/models"
	"github.com/decoydrop/decoydrop/internal/db/repositories"
)

// EventHandlers handles audit event query endpoints
type EventHandlers struct {
	eventRepo *repositories.AuditEventRepository
}

// NewEventHandlers creates a new EventHandlers instance
func NewEventHandlers(db *sql.DB) *EventHandlers {
	return &EventHandlers{
		eventRepo: repositories.NewAuditEventRepository(db),
	}
}

// @Summary      List audit events
// @Description  Get a paginated list of synthetic audit events, newest first, with optional filters.
// @Tags         Events
// @Security     Bearer
// @Produce      json
// @Param        page        query  int     false  "Page number (default 1)"
// @Param        per_page    query  int     false  "Items per page, max 100 (default 20)"
// @Param        event_type  query  string  false  "Filter by event type"
// @Param        actor_id    query  string  false  "Filter by actor"
// @Param        target_id   query  string  false  "Filter by target file link"
// @Param        start       query  string  false  "RFC3339 lower bound on timestamp"
// @Param        end         query  string  false  "RFC3339 upper bound on timestamp"
// @Success      200  {object}  map[string]interface{}  "events: []models.AuditEvent, pagination: map"
// @Failure      400  {object}  map[string]interface{}  "Invalid filter"
// @Router       /api/v1/events [get]
// ListEventsHandler lists audit events with filters and pagination
// GET /api/v1/events?event_type=failedLogin&page=1&per_page=50
func (h *EventHandlers) ListEventsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		page, perPage, offset := parsePagination(c)

		filters, err := parseEventFilters(c)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": err.Error(),
			})
			return
		}

		events, total, err := h.eventRepo.ListEvents(c.Request.Context(), filters, perPage, offset)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to list events",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"events": events,
			"pagination": gin.H{
				"page":     page,
				"per_page": perPage,
				"total":    total,
			},
		})
	}
}

// @Summary      Audit event stats
// @Description  Returns event counts grouped by type over the whole retained window.
// @Tags         Events
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "counts: map[type]count, total"
// @Router       /api/v1/events/stats [get]
// StatsHandler returns per-type event counts
// GET /api/v1/events/stats
func (h *EventHandlers) StatsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		counts, err := h.eventRepo.CountByType(c.Request.Context())
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"error": "Failed to compute event stats",
			})
			return
		}

		var total int64
		for _, n := range counts {
			total += n
		}

		c.JSON(http.StatusOK, gin.H{
			"counts": counts,
			"total":  total,
		})
	}
}

type filterError string

func (e filterError) Error() string { return string(e) }

// parseEventFilters builds repository filters from query params.
func parseEventFilters(c *gin.Context) (repositories.EventFilters, error) {
	var filters repositories.EventFilters

	if eventType := c.Query("event_type"); eventType != "" {
		if !models.ValidEventType(eventType) {
			return filters, filterError("unknown event_type: " + eventType)
		}
		filters.EventType = &eventType
	}
	if actorID := c.Query("actor_id"); actorID != "" {
		filters.ActorID = &actorID
	}
	if targetID := c.Query("target_id"); targetID != "" {
		filters.TargetID = &targetID
	}
	if start := c.Query("start"); start != "" {
		ts, err := time.Parse(time.RFC3339, start)
		if err != nil {
			return filters, filterError("invalid start timestamp, want RFC3339")
		}
		filters.StartDate = &ts
	}
	if end := c.Query("end"); end != "" {
		ts, err := time.Parse(time.RFC3339, end)
		if err != nil {
			return filters, filterError("invalid end timestamp, want RFC3339")
		}
		filters.EndDate = &ts
	}

	return filters, nil
}
