package core

import (
	"context"
	"errors"
	"time"

	"github.com/relaymesh/dtnsim/perf"
	"github.com/relaymesh/dtnsim/state"
)

// timeNow stamps observer events; swappable in tests.
var timeNow = time.Now

// SimulationState is the mutable per-run state threaded through the
// transmission state machine. Exactly one run owns it; it is never shared.
type SimulationState struct {
	Bundle   Bundle
	Current  state.NodeId
	Active   Path
	HopIndex int
	// Route is the sequence of nodes the bundle has actually traversed.
	Route      []state.NodeId
	Disrupted  *DisruptedSet
	Attempted  map[string]struct{}
	Visited    map[state.NodeId]bool
	Attempt    int
	TotalDelay float64
	// StoredAt is the node currently buffering the bundle, "" if in hand.
	StoredAt state.NodeId
}

// TransmissionEngine drives one bundle from source to destination:
// SelectPath -> AdvanceHop -> LinkCheck -> {Commit | Disrupted} ->
// {RecoveryRetry -> (Commit | Reroute)} -> Delivered | Failed.
//
// Logical time only accumulates in TotalDelay; the engine never sleeps.
type TransmissionEngine struct {
	Routing  *RoutingEngine
	Model    DisruptionModel
	Buffers  *BufferStore
	Observer Observer
	Cfg      state.SimConfig

	topo *Topology
}

func NewTransmissionEngine(topo *Topology, routing *RoutingEngine, model DisruptionModel,
	buffers *BufferStore, observer Observer, cfg state.SimConfig) *TransmissionEngine {
	if observer == nil {
		observer = NopObserver()
	}
	return &TransmissionEngine{
		Routing:  routing,
		Model:    model,
		Buffers:  buffers,
		Observer: observer,
		Cfg:      cfg,
		topo:     topo,
	}
}

// Run executes one simulation and returns the aggregated result. Terminal
// outcomes are reported in the record, never as Go errors: the bundle is
// always resolvable as delivered, buffered, or explicitly failed.
func (e *TransmissionEngine) Run(ctx context.Context, bundle Bundle) StatsRecord {
	rec := NewStatsRecorder(bundle)
	obs := MultiObserver(rec, e.Observer)

	ss := &SimulationState{
		Bundle:    bundle,
		Current:   bundle.Source,
		Route:     []state.NodeId{bundle.Source},
		Disrupted: NewDisruptedSet(),
		Attempted: make(map[string]struct{}),
		Visited:   map[state.NodeId]bool{bundle.Source: true},
	}

	dst := bundle.Destination

	// trivial run: already at the destination
	if bundle.Source == dst {
		emit(obs, EventDelivered, map[string]any{
			"bundle": bundle.Id, "path": ss.Route, "total_delay": 0.0,
		})
		perf.RunsDelivered.Add(1)
		return rec.Finalize(StatusDelivered, "", 0, ss.Route, 0, 1, e.Buffers, ss.Disrupted)
	}

	available := 0
	if paths, err := e.Routing.EnumeratePaths(bundle.Source, dst, e.Cfg.MaxSearchDepth); err == nil {
		available = len(paths)
	}

	fail := func(reason FailReason) StatsRecord {
		emit(obs, EventFailed, map[string]any{
			"bundle": bundle.Id, "reason": string(reason), "node": ss.Current,
		})
		perf.RunsFailed.Add(1)
		return rec.Finalize(StatusFailed, reason, ss.TotalDelay, ss.Route,
			ss.Attempt, available, e.Buffers, ss.Disrupted)
	}

	// SelectPath
	cands, err := e.candidates(ss)
	if err != nil || len(cands) == 0 {
		return fail(ReasonNoPath)
	}
	e.adoptPath(obs, rec, ss, cands[0], AttemptSelected)

	for {
		// AdvanceHop; delivery at the destination wins over an exceeded
		// delay budget, so the cancellation signal is checked alone first.
		if reason, stop := cancelled(ctx); stop {
			return fail(reason)
		}
		if ss.Current == dst {
			e.clearResidual(ss)
			emit(obs, EventDelivered, map[string]any{
				"bundle": bundle.Id, "path": ss.Route, "total_delay": ss.TotalDelay,
			})
			rec.MarkAttempt(ss.Attempt, AttemptDelivered)
			perf.RunsDelivered.Add(1)
			return rec.Finalize(StatusDelivered, "", ss.TotalDelay, ss.Route,
				ss.Attempt, available, e.Buffers, ss.Disrupted)
		}
		if reason, stop := e.overBudget(ss); stop {
			return fail(reason)
		}
		next := ss.Active.Hops[ss.HopIndex+1]

		// LinkCheck: the single authoritative disruption draw for this
		// hop attempt.
		if !e.Model.CheckHop(ss.Current, next) {
			e.commitHop(obs, ss, next)
			continue
		}

		link := MakeLink(ss.Current, next)
		ss.Disrupted.Add(link)
		perf.Disruptions.Add(1)
		emit(obs, EventLinkDisrupted, map[string]any{
			"bundle": bundle.Id, "link": link.String(), "node": ss.Current,
		})
		e.storeAtCurrent(obs, ss)

		// immediate reroute avoiding the disrupted first hop; consumes
		// no retry
		if alts, err := e.candidates(ss); err == nil && len(alts) > 0 {
			e.adoptPath(obs, rec, ss, alts[0], AttemptRerouted)
			continue
		}

		// RecoveryRetry
		recovered := false
		for retry := 1; retry <= e.Cfg.MaxRetriesPerLink; retry++ {
			if reason, stop := e.interrupted(ctx, ss); stop {
				return fail(reason)
			}
			perf.Retransmissions.Add(1)
			emit(obs, EventRecoveryAttempt, map[string]any{
				"bundle": bundle.Id, "link": link.String(), "retry": retry,
			})
			if e.Model.CheckRecovery() {
				ss.Disrupted.Remove(link)
				e.clearResidual(ss)
				emit(obs, EventLinkRecovered, map[string]any{
					"bundle": bundle.Id, "link": link.String(), "retries": retry,
				})
				recovered = true
				break
			}
		}
		if recovered {
			continue // same path, same hop
		}

		rec.MarkAttempt(ss.Attempt, AttemptFailed)
		emit(obs, EventPathExhausted, map[string]any{
			"bundle": bundle.Id, "attempt": ss.Attempt,
			"path": ss.Active.Signature(), "retries": e.Cfg.MaxRetriesPerLink,
		})

		alts, err := e.candidates(ss)
		if err != nil || len(alts) == 0 {
			return fail(ReasonExhausted)
		}
		e.adoptPath(obs, rec, ss, alts[0], AttemptRerouted)
	}
}

// cancelled checks the run's cancellation signal at a state-transition
// boundary.
func cancelled(ctx context.Context) (FailReason, bool) {
	select {
	case <-ctx.Done():
		if errors.Is(context.Cause(ctx), context.DeadlineExceeded) {
			return ReasonTimeout, true
		}
		return ReasonCancelled, true
	default:
	}
	return "", false
}

// overBudget checks the logical delay budget and the bundle lifetime.
func (e *TransmissionEngine) overBudget(ss *SimulationState) (FailReason, bool) {
	if e.Cfg.MaxLogicalDelay > 0 && ss.TotalDelay > e.Cfg.MaxLogicalDelay {
		return ReasonTimeout, true
	}
	if ss.Bundle.TTL > 0 && ss.TotalDelay > ss.Bundle.TTL {
		return ReasonTimeout, true
	}
	return "", false
}

func (e *TransmissionEngine) interrupted(ctx context.Context, ss *SimulationState) (FailReason, bool) {
	if reason, stop := cancelled(ctx); stop {
		return reason, true
	}
	return e.overBudget(ss)
}

// candidates returns the ranked untried paths from the current node,
// skipping any that would revisit a node the bundle has already crossed, so
// a delivered route is always a simple path.
func (e *TransmissionEngine) candidates(ss *SimulationState) ([]Path, error) {
	alts, err := e.Routing.SelectAlternatives(ss.Current, ss.Bundle.Destination,
		ss.Disrupted, e.Cfg.MaxAlternatePaths, e.Cfg.MaxSearchDepth)
	if err != nil {
		return nil, err
	}
	out := make([]Path, 0, len(alts))
	for _, p := range alts {
		if _, tried := ss.Attempted[p.Signature()]; tried {
			continue
		}
		if e.revisits(ss, p) {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (e *TransmissionEngine) revisits(ss *SimulationState, p Path) bool {
	for _, h := range p.Hops[1:] {
		if ss.Visited[h] {
			return true
		}
	}
	return false
}

func (e *TransmissionEngine) adoptPath(obs Observer, rec *StatsRecorder, ss *SimulationState, p Path, status string) {
	ss.Attempted[p.Signature()] = struct{}{}
	ss.Attempt++
	ss.Active = p
	ss.HopIndex = 0
	rec.RecordAttempt(ss.Attempt, p, status)
	evType := EventPathSelected
	if status == AttemptRerouted {
		evType = EventRerouted
	}
	emit(obs, evType, map[string]any{
		"bundle": ss.Bundle.Id, "attempt": ss.Attempt,
		"path": p.Signature(), "score": p.Score(),
	})
}

func (e *TransmissionEngine) commitHop(obs Observer, ss *SimulationState, next state.NodeId) {
	attrs, err := e.topo.LinkAttrs(ss.Current, next)
	if err != nil {
		// paths only ever contain topology edges
		panic(err)
	}
	e.clearResidual(ss)
	ss.TotalDelay += attrs.Delay
	from := ss.Current
	ss.Current = next
	ss.HopIndex++
	ss.Route = append(ss.Route, next)
	ss.Visited[next] = true
	perf.HopsCommitted.Add(1)
	emit(obs, EventHopCommitted, map[string]any{
		"bundle": ss.Bundle.Id, "from": from, "to": next,
		"delay": attrs.Delay, "total_delay": ss.TotalDelay,
	})
}

// storeAtCurrent buffers the bundle at the current node while the link is
// down. A full buffer forces the reroute ladder without storing.
func (e *TransmissionEngine) storeAtCurrent(obs Observer, ss *SimulationState) {
	if ss.StoredAt == ss.Current {
		return // already buffered here from an earlier disruption
	}
	err := e.Buffers.Store(ss.Current, ss.Bundle)
	var full *BufferFullError
	if errors.As(err, &full) {
		emit(obs, EventBufferOverflow, map[string]any{
			"bundle": ss.Bundle.Id, "node": ss.Current, "capacity": full.Capacity,
		})
		return
	}
	ss.StoredAt = ss.Current
	emit(obs, EventBundleStored, map[string]any{
		"bundle": ss.Bundle.Id, "node": ss.Current,
		"occupancy": e.Buffers.Occupancy(ss.Current),
	})
}

// clearResidual removes the buffered copy once the bundle moves on, keeping
// the copy at no more than one node at any time.
func (e *TransmissionEngine) clearResidual(ss *SimulationState) {
	if ss.StoredAt != "" {
		e.Buffers.Remove(ss.StoredAt, ss.Bundle)
		ss.StoredAt = ""
	}
}

func emit(obs Observer, t EventType, attrs map[string]any) {
	obs.Observe(Event{Type: t, Timestamp: timeNow(), Attrs: attrs})
}
