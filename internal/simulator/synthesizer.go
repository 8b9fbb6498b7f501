// synthesizer.go builds a single synthetic audit event from the current mode flag and the
// supplied reference snapshots. Synthesis is a pure transformation — persistence happens
// in the scheduler — so the event-type distribution can be asserted statistically in tests.
package simulator

import (
	"math/rand"
	"time"

	"github.com/decoydrop/decoydrop/internal/db/models"
	"github.com/google/uuid"
)

// Steady-state event-type distribution. A uniform draw r maps to:
// r < probSteadyDownload → download; r < probSteadyLogin → login;
// r < probSteadyFailedDownload → failedDownload; else failedLogin.
const (
	probSteadyDownload       = 0.5
	probSteadyLogin          = 0.8
	probSteadyFailedDownload = 0.9
)

// probSpikeFailedLogin biases spike-mode events toward failed logins; the
// remainder are failed downloads. Spikes never produce successful events.
const probSpikeFailedLogin = 0.7

// probDownloadAttributed is the chance a download-type event is attributed to
// the target's owner. Most downloads stay anonymous: shared links are opened
// without a session.
const probDownloadAttributed = 0.3

// Canned detail strings attached to synthesized events.
const (
	detailLogin          = "Session established"
	detailFailedLogin    = "Invalid password attempt"
	detailDownload       = "File link downloaded"
	detailFailedDownload = "Download rejected: link expired or token invalid"
)

// synthesize produces zero or one audit event for a single tick.
//
// A nil return is a valid no-op outcome, not an error: login-type events are
// skipped entirely when no users are available, because a login event without
// an actor would be nonsense. Download-type events tolerate an empty file set
// and fall back to a nil target.
func synthesize(rng *rand.Rand, spike bool, users []*models.User, files []*models.FileLink) *models.AuditEvent {
	eventType := pickEventType(rng, spike)

	event := &models.AuditEvent{
		ID:              uuid.New().String(),
		Timestamp:       time.Now(),
		EventType:       eventType,
		OriginAddress:   RandomIP(rng),
		ClientSignature: RandomUserAgent(rng),
	}

	switch eventType {
	case models.EventLogin, models.EventFailedLogin:
		if len(users) == 0 {
			return nil
		}
		actor := users[rng.Intn(len(users))]
		event.ActorID = &actor.ID
		detail := detailLogin
		if eventType == models.EventFailedLogin {
			detail = detailFailedLogin
		}
		event.Detail = &detail

	case models.EventDownload, models.EventFailedDownload:
		if len(files) > 0 {
			target := files[rng.Intn(len(files))]
			event.TargetID = &target.ID
			if target.OwnerID != nil && rng.Float64() < probDownloadAttributed {
				event.ActorID = target.OwnerID
			}
		}
		detail := detailDownload
		if eventType == models.EventFailedDownload {
			detail = detailFailedDownload
		}
		event.Detail = &detail
	}

	return event
}

// pickEventType draws an event type from the spike or steady-state distribution.
func pickEventType(rng *rand.Rand, spike bool) string {
	if spike {
		if rng.Float64() < probSpikeFailedLogin {
			return models.EventFailedLogin
		}
		return models.EventFailedDownload
	}

	r := rng.Float64()
	switch {
	case r < probSteadyDownload:
		return models.EventDownload
	case r < probSteadyLogin:
		return models.EventLogin
	case r < probSteadyFailedDownload:
		return models.EventFailedDownload
	default:
		return models.EventFailedLogin
	}
}
