package core

import (
	"context"
	"fmt"
	"time"

	"github.com/relaymesh/dtnsim/state"
)

// Simulate runs one bundle from source to destination over the given
// topology. It wires a private buffer store, disruption model and random
// source for the run, so callers may invoke it concurrently with a shared
// Topology. Configuration problems are reported as errors before the
// simulation starts; terminal run outcomes live in the returned record.
func Simulate(ctx context.Context, topo *Topology, source, destination state.NodeId,
	payload []byte, cfg state.SimConfig, observer Observer) (StatsRecord, error) {
	cfg.ApplyDefaults()
	if err := state.SimConfigValidator(&cfg); err != nil {
		return StatsRecord{}, err
	}
	if !topo.HasNode(source) {
		return StatsRecord{}, &state.ConfigError{Field: "source", Reason: fmt.Sprintf("node %s not defined", source)}
	}
	if !topo.HasNode(destination) {
		return StatsRecord{}, &state.ConfigError{Field: "destination", Reason: fmt.Sprintf("node %s not defined", destination)}
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	engine := NewTransmissionEngine(
		topo,
		NewRoutingEngine(topo),
		NewSeededModel(cfg.ErrorRate, cfg.DisruptionRate, seed),
		NewBufferStore(cfg.BufferCapacityPerNode),
		observer,
		cfg,
	)
	bundle := NewBundle(source, destination, payload)
	return engine.Run(ctx, bundle), nil
}
