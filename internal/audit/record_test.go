package audit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The JSON shape of shipped records is an external contract: SIEM pipelines
// parse these fields by name, so tag changes are breaking changes.

func TestRecordWireFormat_Synthetic(t *testing.T) {
	ts := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)
	rec := &Record{
		Timestamp:       ts,
		Kind:            KindSynthetic,
		EventType:       "failedLogin",
		ActorID:         "user-1",
		OriginAddress:   "62.210.4.17",
		ClientSignature: "curl/8.5.0",
		Detail:          "Invalid password attempt",
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, "synthetic", fields["kind"])
	assert.Equal(t, "failedLogin", fields["event_type"])
	assert.Equal(t, "user-1", fields["actor_id"])
	assert.Equal(t, "62.210.4.17", fields["origin_address"])
	assert.Equal(t, "curl/8.5.0", fields["client_signature"])
	assert.Equal(t, "Invalid password attempt", fields["detail"])
	assert.Equal(t, "2026-04-02T09:30:00Z", fields["timestamp"])

	// Operator-only fields must not leak into synthetic records.
	assert.NotContains(t, fields, "operator")
	assert.NotContains(t, fields, "action")
	assert.NotContains(t, fields, "status_code")
}

func TestRecordWireFormat_Operator(t *testing.T) {
	rec := &Record{
		Timestamp:     time.Now(),
		Kind:          KindOperator,
		Action:        "DELETE /api/v1/users/abc",
		Operator:      "admin",
		OriginAddress: "10.0.0.5",
		StatusCode:    204,
	}

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	assert.Equal(t, "operator", fields["kind"])
	assert.Equal(t, "DELETE /api/v1/users/abc", fields["action"])
	assert.Equal(t, "admin", fields["operator"])
	assert.EqualValues(t, 204, fields["status_code"])

	assert.NotContains(t, fields, "event_type")
	assert.NotContains(t, fields, "target_id")
}

func TestRecordWireFormat_EmptyFieldsOmitted(t *testing.T) {
	data, err := json.Marshal(&Record{Timestamp: time.Now(), Kind: KindSynthetic})
	require.NoError(t, err)

	var fields map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &fields))

	// Only the two mandatory fields survive omitempty.
	assert.Len(t, fields, 2)
	assert.Contains(t, fields, "timestamp")
	assert.Contains(t, fields, "kind")
}
