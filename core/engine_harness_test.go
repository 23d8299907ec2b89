package core

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/relaymesh/dtnsim/state"
	"github.com/stretchr/testify/require"
)

// scriptedModel is a DisruptionModel with pre-programmed outcomes, so
// engine tests are exact rather than statistical. Each link carries a queue
// of hop outcomes; an exhausted queue means the hop succeeds unless the
// link is marked always-disrupted. Recovery outcomes form a single queue
// and default to failure.
type scriptedModel struct {
	hops       map[Link][]bool
	always     map[Link]bool
	recoveries []bool
}

func newScriptedModel() *scriptedModel {
	return &scriptedModel{
		hops:   make(map[Link][]bool),
		always: make(map[Link]bool),
	}
}

func (m *scriptedModel) DisruptOnce(a, b state.NodeId) {
	l := MakeLink(a, b)
	m.hops[l] = append(m.hops[l], true)
}

func (m *scriptedModel) AlwaysDisrupt(a, b state.NodeId) {
	m.always[MakeLink(a, b)] = true
}

func (m *scriptedModel) RecoverOn(outcomes ...bool) {
	m.recoveries = append(m.recoveries, outcomes...)
}

func (m *scriptedModel) CheckHop(a, b state.NodeId) bool {
	l := MakeLink(a, b)
	if q := m.hops[l]; len(q) > 0 {
		m.hops[l] = q[1:]
		return q[0]
	}
	return m.always[l]
}

func (m *scriptedModel) CheckRecovery() bool {
	if len(m.recoveries) == 0 {
		return false
	}
	out := m.recoveries[0]
	m.recoveries = m.recoveries[1:]
	return out
}

// eventRecorder collects the engine's event stream for assertions.
type eventRecorder struct {
	events []Event
}

func (r *eventRecorder) Observe(ev Event) {
	r.events = append(r.events, ev)
}

func (r *eventRecorder) Types() []EventType {
	out := make([]EventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}

func (r *eventRecorder) Count(t EventType) int {
	n := 0
	for _, ev := range r.events {
		if ev.Type == t {
			n++
		}
	}
	return n
}

func (r *eventRecorder) AssertTypes(t *testing.T, want ...EventType) {
	t.Helper()
	if diff := cmp.Diff(want, r.Types()); diff != "" {
		t.Errorf("event stream mismatch (-want +got):\n%s", diff)
	}
}

// EngineHarness wires a TransmissionEngine over a scripted disruption
// model and a recording observer.
type EngineHarness struct {
	t       *testing.T
	Engine  *TransmissionEngine
	Model   *scriptedModel
	Events  *eventRecorder
	Buffers *BufferStore
}

func engineTestConfig() state.SimConfig {
	cfg := state.SimConfig{}
	cfg.ApplyDefaults()
	return cfg
}

func NewEngineHarness(t *testing.T, topo *Topology, cfg state.SimConfig) *EngineHarness {
	t.Helper()
	model := newScriptedModel()
	events := &eventRecorder{}
	buffers := NewBufferStore(cfg.BufferCapacityPerNode)
	return &EngineHarness{
		t:       t,
		Engine:  NewTransmissionEngine(topo, NewRoutingEngine(topo), model, buffers, events, cfg),
		Model:   model,
		Events:  events,
		Buffers: buffers,
	}
}

func (h *EngineHarness) Run(source, destination state.NodeId) StatsRecord {
	h.t.Helper()
	return h.RunCtx(context.Background(), source, destination)
}

func (h *EngineHarness) RunCtx(ctx context.Context, source, destination state.NodeId) StatsRecord {
	h.t.Helper()
	bundle := Bundle{Id: "bundle-1", Source: source, Destination: destination}
	return h.Engine.Run(ctx, bundle)
}

// chainTopo builds a linear topology over the given nodes with the given
// per-link delays, all near links.
func chainTopo(t *testing.T, nodes []string, delays []float64) *Topology {
	t.Helper()
	require.Equal(t, len(nodes)-1, len(delays))
	doc := &state.TopologyDoc{}
	for _, n := range nodes {
		doc.Nodes = append(doc.Nodes, state.TopologyNode{Id: n})
	}
	for i, d := range delays {
		doc.Links = append(doc.Links, state.TopologyLink{
			Source: nodes[i], Target: nodes[i+1], Delay: d, Distance: "1 km",
		})
	}
	topo, err := NewTopology(doc)
	require.NoError(t, err)
	return topo
}

// disjointDiamondTopo has two node-disjoint routes from s to d:
// s>m1>d (delay 20) and s>m2>d (delay 40).
func disjointDiamondTopo(t *testing.T) *Topology {
	t.Helper()
	topo, err := NewTopology(&state.TopologyDoc{
		Nodes: []state.TopologyNode{{Id: "s"}, {Id: "m1"}, {Id: "m2"}, {Id: "d"}},
		Links: []state.TopologyLink{
			{Source: "s", Target: "m1", Delay: 10, Distance: "1 km"},
			{Source: "m1", Target: "d", Delay: 10, Distance: "1 km"},
			{Source: "s", Target: "m2", Delay: 20, Distance: "1 km"},
			{Source: "m2", Target: "d", Delay: 20, Distance: "1 km"},
		},
	})
	require.NoError(t, err)
	return topo
}
