// attack.go implements on-demand attack injection: a time-compressed burst of download
// events against every bait file link, all from a single spoofed origin, simulating a
// coordinated exfiltration attempt. The burst runs independently of the steady scheduler
// and concurrent bursts are allowed to interleave.
package simulator

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/decoydrop/decoydrop/internal/db/models"
	"github.com/decoydrop/decoydrop/internal/safego"
	"github.com/decoydrop/decoydrop/internal/telemetry"
	"github.com/google/uuid"
)

// detailAttack marks burst events so analysts reviewing the honeypot's own
// records can tell injected bursts from organically fabricated traffic.
const detailAttack = "Simulated exfiltration: scripted bulk download"

// AttackResult is the synchronous response to an injection request — the only
// error surface the injector exposes. Background write failures inside the
// burst are logged, not returned.
type AttackResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// InjectAttack snapshots the current bait file set and schedules one download
// event per file, spread evenly across the attack window, all sharing one
// spoofed origin address and client signature. It returns immediately; the
// burst completes in the background and is cancelled as a group when the
// simulator stops.
func (s *Simulator) InjectAttack(ctx context.Context) AttackResult {
	links, err := s.files.AllFileLinks(ctx)
	if err != nil {
		slog.Error("attack injection: failed to snapshot file links", "error", err)
		return AttackResult{Success: false, Message: "could not load file links for attack simulation"}
	}

	// Zero files would make the per-event spacing undefined; treat it as a
	// benign no-op rather than scheduling anything.
	if len(links) == 0 {
		return AttackResult{Success: true, Message: "no file links to attack; nothing scheduled"}
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	// One attacker identity for the whole burst.
	origin := RandomIP(rng)
	signature := RandomUserAgent(rng)
	spacing := s.attackWindow / time.Duration(len(links))

	safego.Go(func() {
		s.runAttackBurst(links, origin, signature, spacing)
	})

	telemetry.SimulatorAttackBurstsTotal.Inc()
	slog.Info("attack injection scheduled",
		"events", len(links), "window", s.attackWindow, "origin", origin)

	return AttackResult{
		Success: true,
		Message: fmt.Sprintf("attack simulation started: %d download events over %s from %s",
			len(links), s.attackWindow, origin),
	}
}

// runAttackBurst writes one download event per link, waiting the computed
// spacing between writes so the i-th event lands at roughly i*spacing after
// invocation. The burst aborts between writes if the simulator stops.
func (s *Simulator) runAttackBurst(links []*models.FileLink, origin, signature string, spacing time.Duration) {
	// The triggering HTTP request is long gone by the time later writes fire,
	// so the burst runs on its own context.
	ctx := context.Background()

	for i, link := range links {
		if i > 0 {
			select {
			case <-time.After(spacing):
			case <-s.stopChan:
				slog.Info("attack burst cancelled", "written", i, "planned", len(links))
				return
			}
		}

		detail := detailAttack
		event := &models.AuditEvent{
			ID:              uuid.New().String(),
			Timestamp:       time.Now(),
			EventType:       models.EventDownload,
			TargetID:        &link.ID,
			OriginAddress:   origin,
			ClientSignature: signature,
			Detail:          &detail,
		}

		if err := s.events.CreateEvent(ctx, event); err != nil {
			slog.Error("attack burst: failed to persist event",
				"target_id", link.ID, "error", err)
			continue
		}
		telemetry.SimulatorEventsTotal.WithLabelValues(models.EventDownload).Inc()
	}

	slog.Info("attack burst completed", "events", len(links))
}
