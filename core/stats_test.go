package core

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/relaymesh/dtnsim/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatsRecorderCountsEvents(t *testing.T) {
	r := NewStatsRecorder(testBundle("b1"))
	for _, ev := range []EventType{
		EventHopCommitted, EventHopCommitted,
		EventLinkDisrupted, EventBundleStored,
		EventRecoveryAttempt, EventRecoveryAttempt, EventRecoveryAttempt,
		EventPathSelected, EventDelivered, // not counted
	} {
		r.Observe(Event{Type: ev, Timestamp: time.Now()})
	}

	rec := r.Finalize(StatusDelivered, "", 30, []state.NodeId{"a", "z"},
		1, 1, NewBufferStore(4), NewDisruptedSet())
	assert.Equal(t, 2, rec.Hops)
	assert.Equal(t, 1, rec.Disruptions)
	assert.Equal(t, 1, rec.StorageEvents)
	assert.Equal(t, 3, rec.TotalRetransmissions)
}

func TestStatsRecorderMarkAttempt(t *testing.T) {
	r := NewStatsRecorder(testBundle("b1"))
	r.RecordAttempt(1, Path{Hops: []state.NodeId{"a", "b", "z"}}, AttemptSelected)
	r.RecordAttempt(2, Path{Hops: []state.NodeId{"a", "c", "z"}}, AttemptRerouted)
	r.MarkAttempt(1, AttemptFailed)
	r.MarkAttempt(2, AttemptDelivered)

	rec := r.Finalize(StatusDelivered, "", 30, []state.NodeId{"a", "c", "z"},
		2, 2, NewBufferStore(4), NewDisruptedSet())
	require.Len(t, rec.PathHistory, 2)
	assert.Equal(t, AttemptFailed, rec.PathHistory[0].Status)
	assert.Equal(t, AttemptDelivered, rec.PathHistory[1].Status)
}

func TestStatsRecordJSONShape(t *testing.T) {
	disrupted := NewDisruptedSet()
	disrupted.Add(MakeLink("b", "c"))

	r := NewStatsRecorder(testBundle("b1"))
	rec := r.Finalize(StatusFailed, ReasonExhausted, 10, []state.NodeId{"a", "b"},
		1, 2, NewBufferStore(4), disrupted)

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	for _, key := range []string{
		"bundle", "source", "destination", "status", "reason",
		"total_delay", "total_retransmissions", "disruptions",
		"max_stored_bundles", "final_path", "path_history",
		"paths_attempted", "total_available_paths", "disrupted_links",
	} {
		assert.Contains(t, decoded, key)
	}
	assert.Equal(t, "Failed", decoded["status"])
	assert.Equal(t, "Exhausted", decoded["reason"])
	assert.Equal(t, []any{"b<->c"}, decoded["disrupted_links"])
}

func TestStatsRecordOmitsReasonWhenDelivered(t *testing.T) {
	r := NewStatsRecorder(testBundle("b1"))
	rec := r.Finalize(StatusDelivered, "", 30, []state.NodeId{"a", "z"},
		1, 1, NewBufferStore(4), NewDisruptedSet())
	raw, err := json.Marshal(rec)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), `"reason"`)
}
