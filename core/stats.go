package core

import (
	"time"

	"github.com/relaymesh/dtnsim/state"
)

type Status string

const (
	StatusDelivered Status = "Delivered"
	StatusFailed    Status = "Failed"
)

type FailReason string

const (
	ReasonNoPath    FailReason = "NoPath"
	ReasonExhausted FailReason = "Exhausted"
	ReasonTimeout   FailReason = "Timeout"
	ReasonCancelled FailReason = "Cancelled"
)

// Path attempt statuses recorded in the run history.
const (
	AttemptSelected  = "Selected"
	AttemptRerouted  = "Rerouted"
	AttemptFailed    = "Failed"
	AttemptDelivered = "Delivered"
)

// PathAttempt is one entry of the per-run path history: every path switch
// appends exactly one record.
type PathAttempt struct {
	Attempt int            `json:"attempt"`
	Path    []state.NodeId `json:"path"`
	Status  string         `json:"status"`
}

// StatsRecord is the immutable result of one simulation run.
type StatsRecord struct {
	Bundle               string               `json:"bundle"`
	Source               state.NodeId         `json:"source"`
	Destination          state.NodeId         `json:"destination"`
	Status               Status               `json:"status"`
	Reason               FailReason           `json:"reason,omitempty"`
	TotalDelay           float64              `json:"total_delay"`
	Hops                 int                  `json:"hops"`
	TotalRetransmissions int                  `json:"total_retransmissions"`
	Disruptions          int                  `json:"disruptions"`
	StorageEvents        int                  `json:"storage_events"`
	MaxStoredBundles     int                  `json:"max_stored_bundles"`
	FinalPath            []state.NodeId       `json:"final_path"`
	PathHistory          []PathAttempt        `json:"path_history"`
	PathsAttempted       int                  `json:"paths_attempted"`
	TotalAvailablePaths  int                  `json:"total_available_paths"`
	BufferOccupancy      map[state.NodeId]int `json:"buffer_occupancy"`
	DisruptedLinks       []string             `json:"disrupted_links"`
	StartedAt            time.Time            `json:"started_at"`
	FinishedAt           time.Time            `json:"finished_at"`
}

// StatsRecorder aggregates engine events into one StatsRecord. It is pure
// aggregation: all decisions stay in the engine. The recorder doubles as an
// Observer so it can sit on the same event stream as any external sink.
type StatsRecorder struct {
	rec StatsRecord
}

func NewStatsRecorder(bundle Bundle) *StatsRecorder {
	return &StatsRecorder{
		rec: StatsRecord{
			Bundle:      bundle.Id,
			Source:      bundle.Source,
			Destination: bundle.Destination,
			PathHistory: make([]PathAttempt, 0),
			StartedAt:   time.Now(),
		},
	}
}

func (r *StatsRecorder) Observe(ev Event) {
	switch ev.Type {
	case EventHopCommitted:
		r.rec.Hops++
	case EventLinkDisrupted:
		r.rec.Disruptions++
	case EventBundleStored:
		r.rec.StorageEvents++
	case EventRecoveryAttempt:
		r.rec.TotalRetransmissions++
	}
}

// RecordAttempt appends one path-switch record to the history.
func (r *StatsRecorder) RecordAttempt(attempt int, path Path, status string) {
	r.rec.PathHistory = append(r.rec.PathHistory, PathAttempt{
		Attempt: attempt,
		Path:    path.Hops,
		Status:  status,
	})
}

// MarkAttempt rewrites the status of the given attempt in place, e.g. when
// an active path runs out of retries or delivers the bundle.
func (r *StatsRecorder) MarkAttempt(attempt int, status string) {
	for i := range r.rec.PathHistory {
		if r.rec.PathHistory[i].Attempt == attempt {
			r.rec.PathHistory[i].Status = status
		}
	}
}

// Finalize completes the record with the terminal outcome and the
// end-of-run snapshots, and returns the immutable result.
func (r *StatsRecorder) Finalize(status Status, reason FailReason, totalDelay float64,
	finalPath []state.NodeId, attempted, available int,
	buffers *BufferStore, disrupted *DisruptedSet) StatsRecord {
	r.rec.Status = status
	r.rec.Reason = reason
	r.rec.TotalDelay = totalDelay
	r.rec.FinalPath = finalPath
	r.rec.PathsAttempted = attempted
	r.rec.TotalAvailablePaths = available
	r.rec.BufferOccupancy = buffers.Snapshot()
	r.rec.MaxStoredBundles = buffers.MaxStored()
	links := disrupted.Links()
	r.rec.DisruptedLinks = make([]string, 0, len(links))
	for _, l := range links {
		r.rec.DisruptedLinks = append(r.rec.DisruptedLinks, l.String())
	}
	r.rec.FinishedAt = time.Now()
	return r.rec
}
