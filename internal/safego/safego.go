// Package safego provides a panic-recovering goroutine launcher for background work.
package safego

import "log/slog"

// Go launches fn in a new goroutine. If fn panics, the panic is recovered and
// logged rather than crashing the process. Every fire-and-forget goroutine in
// the application (simulator loops, async event writes, attack bursts, audit
// shipping) goes through this helper: an unrecovered panic in a honeypot's
// fabrication engine would silently freeze the decoy's activity stream, which
// is exactly the kind of tell an attacker notices.
func Go(fn func()) {
	go func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("recovered panic in background goroutine", "panic", r)
			}
		}()
		fn()
	}()
}
