package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

// ---------------------------------------------------------------------------
// Metric registration
// ---------------------------------------------------------------------------

func TestHTTPRequestsTotal_Registered(t *testing.T) {
	HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200").Inc()
	v := testutil.ToFloat64(HTTPRequestsTotal.WithLabelValues("GET", "/healthz", "200"))
	if v < 1 {
		t.Errorf("counter value = %v, want >= 1", v)
	}
}

func TestSimulatorEventsTotal_ByType(t *testing.T) {
	SimulatorEventsTotal.WithLabelValues("download").Add(3)
	v := testutil.ToFloat64(SimulatorEventsTotal.WithLabelValues("download"))
	if v < 3 {
		t.Errorf("counter value = %v, want >= 3", v)
	}
}

func TestSimulatorCounters_Increment(t *testing.T) {
	beforeSkips := testutil.ToFloat64(SimulatorSkipsTotal)
	beforeSpikes := testutil.ToFloat64(SimulatorSpikesTotal)
	beforeBursts := testutil.ToFloat64(SimulatorAttackBurstsTotal)

	SimulatorSkipsTotal.Inc()
	SimulatorSpikesTotal.Inc()
	SimulatorAttackBurstsTotal.Inc()

	if v := testutil.ToFloat64(SimulatorSkipsTotal); v != beforeSkips+1 {
		t.Errorf("skips = %v, want %v", v, beforeSkips+1)
	}
	if v := testutil.ToFloat64(SimulatorSpikesTotal); v != beforeSpikes+1 {
		t.Errorf("spikes = %v, want %v", v, beforeSpikes+1)
	}
	if v := testutil.ToFloat64(SimulatorAttackBurstsTotal); v != beforeBursts+1 {
		t.Errorf("bursts = %v, want %v", v, beforeBursts+1)
	}
}

func TestSimulatorRetentionDeletedTotal_AddsBulkCount(t *testing.T) {
	before := testutil.ToFloat64(SimulatorRetentionDeletedTotal)
	SimulatorRetentionDeletedTotal.Add(42)
	if v := testutil.ToFloat64(SimulatorRetentionDeletedTotal); v != before+42 {
		t.Errorf("retention deleted = %v, want %v", v, before+42)
	}
}

func TestDBOpenConnections_Gauge(t *testing.T) {
	DBOpenConnections.Set(7)
	if v := testutil.ToFloat64(DBOpenConnections); v != 7 {
		t.Errorf("gauge = %v, want 7", v)
	}
}
