package simulator

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/decoydrop/decoydrop/internal/db/models"
)

func attackLinks(n int) []*models.FileLink {
	links := make([]*models.FileLink, n)
	for i := range links {
		links[i] = &models.FileLink{ID: uuid.New().String(), FileName: "bait.xlsx"}
	}
	return links
}

func TestInjectAttack_NoLinks(t *testing.T) {
	dir := &staticDirectory{}
	store := &memoryStore{}
	sim := New(dir, dir, store, 1, 30)

	result := sim.InjectAttack(context.Background())
	if !result.Success {
		t.Fatalf("empty bait set should be a benign no-op, got: %s", result.Message)
	}

	time.Sleep(50 * time.Millisecond)
	if n := store.eventCount(); n != 0 {
		t.Errorf("no-op injection wrote %d events", n)
	}
}

func TestInjectAttack_SnapshotError(t *testing.T) {
	dir := &staticDirectory{err: errors.New("connection refused")}
	store := &memoryStore{}
	sim := New(dir, dir, store, 1, 30)

	result := sim.InjectAttack(context.Background())
	if result.Success {
		t.Fatal("injection should fail when the bait set cannot be loaded")
	}
	if result.Message == "" {
		t.Error("failure result carries no message")
	}
}

func TestInjectAttack_BurstWritesEveryLink(t *testing.T) {
	links := attackLinks(5)
	dir := &staticDirectory{files: links}
	store := &memoryStore{}
	sim := New(dir, dir, store, 1, 30)
	sim.attackWindow = 50 * time.Millisecond

	result := sim.InjectAttack(context.Background())
	if !result.Success {
		t.Fatalf("injection failed: %s", result.Message)
	}

	waitFor(t, 2*time.Second, func() bool { return store.eventCount() == len(links) },
		"burst did not write one event per link")

	events := store.snapshot()
	origin := events[0].OriginAddress
	signature := events[0].ClientSignature

	targeted := map[string]bool{}
	for _, event := range events {
		if event.EventType != models.EventDownload {
			t.Fatalf("burst produced a %s event, want only downloads", event.EventType)
		}
		if event.OriginAddress != origin || event.ClientSignature != signature {
			t.Fatal("burst events do not share a single attacker identity")
		}
		if event.Detail == nil || *event.Detail == "" {
			t.Fatal("burst event missing the injection marker detail")
		}
		if event.TargetID == nil {
			t.Fatal("burst event has no target")
		}
		targeted[*event.TargetID] = true
	}

	for _, link := range links {
		if !targeted[link.ID] {
			t.Errorf("link %s was never targeted", link.ID)
		}
	}
}

func TestInjectAttack_ReturnsImmediately(t *testing.T) {
	dir := &staticDirectory{files: attackLinks(5)}
	store := &memoryStore{}
	sim := New(dir, dir, store, 1, 30)
	// A long window: the call must not wait for the burst to finish.
	sim.attackWindow = 10 * time.Second

	start := time.Now()
	result := sim.InjectAttack(context.Background())
	elapsed := time.Since(start)

	if !result.Success {
		t.Fatalf("injection failed: %s", result.Message)
	}
	if elapsed > time.Second {
		t.Errorf("InjectAttack blocked for %s", elapsed)
	}
	if !strings.Contains(result.Message, "5") {
		t.Errorf("message %q does not mention the event count", result.Message)
	}
	sim.Stop()
}

func TestInjectAttack_CancelledByStop(t *testing.T) {
	links := attackLinks(50)
	dir := &staticDirectory{files: links}
	store := &memoryStore{}
	sim := New(dir, dir, store, 1, 30)
	// 100ms spacing between writes: plenty of burst left to cancel.
	sim.attackWindow = 5 * time.Second

	result := sim.InjectAttack(context.Background())
	if !result.Success {
		t.Fatalf("injection failed: %s", result.Message)
	}

	waitFor(t, 2*time.Second, func() bool { return store.eventCount() >= 1 },
		"burst never started")
	sim.Stop()

	// Let any write already in flight land before sampling.
	time.Sleep(300 * time.Millisecond)
	count := store.eventCount()
	if count == len(links) {
		t.Fatal("burst ran to completion despite Stop")
	}
	time.Sleep(300 * time.Millisecond)
	if after := store.eventCount(); after != count {
		t.Errorf("burst kept writing after Stop: %d -> %d", count, after)
	}
}

func TestInjectAttack_ConcurrentBursts(t *testing.T) {
	links := attackLinks(3)
	dir := &staticDirectory{files: links}
	store := &memoryStore{}
	sim := New(dir, dir, store, 1, 30)
	sim.attackWindow = 30 * time.Millisecond

	for i := 0; i < 3; i++ {
		if result := sim.InjectAttack(context.Background()); !result.Success {
			t.Fatalf("injection %d failed: %s", i, result.Message)
		}
	}

	waitFor(t, 2*time.Second, func() bool { return store.eventCount() == 3*len(links) },
		"concurrent bursts did not all complete")
}
