package cmd

import (
	"log/slog"

	"github.com/relaymesh/dtnsim/core"
	"github.com/relaymesh/dtnsim/state"
)

// loadEnv assembles the shared invocation environment from the persistent
// flags: settings, logger and topology.
func loadEnv() (*state.Env, *core.Topology, error) {
	settings := &state.Settings{}
	if settingsPath != "" {
		var err error
		settings, err = state.LoadSettings(settingsPath)
		if err != nil {
			return nil, nil, err
		}
	} else {
		settings.Simulation.ApplyDefaults()
	}
	if logPath != "" {
		settings.LogPath = logPath
	}

	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	log, err := core.NewLogger("dtnsim", level, settings.LogPath)
	if err != nil {
		return nil, nil, err
	}

	var doc *state.TopologyDoc
	if useDemo {
		doc = state.DemoTopology()
	} else {
		doc, err = state.LoadTopology(topologyPath)
		if err != nil {
			return nil, nil, err
		}
	}
	topo, err := core.NewTopology(doc)
	if err != nil {
		return nil, nil, err
	}

	return core.NewEnv(*settings, log), topo, nil
}
