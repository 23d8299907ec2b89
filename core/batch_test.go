package core

import (
	"context"
	"testing"

	"github.com/relaymesh/dtnsim/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestRunBatchQuietNetwork(t *testing.T) {
	defer goleak.VerifyNone(t)

	res, err := RunBatch(context.Background(), demoTopo(t),
		"mars_rover", "earth_station", nil,
		state.SimConfig{Seed: 1}, 20, 4, nil)
	require.NoError(t, err)

	assert.Len(t, res.Records, 20)
	assert.Equal(t, 20, res.Delivered)
	assert.Equal(t, 0, res.Failed)
	assert.Equal(t, 1.0, res.DeliveryRatio)
	assert.Equal(t, 1310.0, res.MeanDelay)
	assert.Equal(t, 0, res.TotalDisruptions)
	assert.Equal(t, 0, res.TotalRetransmissions)
}

func TestRunBatchSeedsAreDerivedPerRun(t *testing.T) {
	defer goleak.VerifyNone(t)
	cfg := state.SimConfig{ErrorRate: 0.3, DisruptionRate: 0.3, Seed: 7}

	a, err := RunBatch(context.Background(), demoTopo(t),
		"mars_rover", "earth_station", nil, cfg, 50, 8, nil)
	require.NoError(t, err)
	b, err := RunBatch(context.Background(), demoTopo(t),
		"mars_rover", "earth_station", nil, cfg, 50, 2, nil)
	require.NoError(t, err)

	// run i always uses seed+i, so parallelism never changes the outcome
	assert.Equal(t, a.Delivered, b.Delivered)
	assert.Equal(t, a.TotalDisruptions, b.TotalDisruptions)
	assert.Equal(t, a.TotalRetransmissions, b.TotalRetransmissions)
	require.Len(t, b.Records, 50)
	for i := range a.Records {
		assert.Equal(t, a.Records[i].Status, b.Records[i].Status)
		assert.Equal(t, a.Records[i].TotalDelay, b.Records[i].TotalDelay)
	}
}

func TestRunBatchCancelledSweep(t *testing.T) {
	defer goleak.VerifyNone(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := RunBatch(ctx, demoTopo(t),
		"mars_rover", "earth_station", nil,
		state.SimConfig{Seed: 1}, 100, 4, nil)
	require.NoError(t, err)

	// runs that never started are excluded from the result entirely
	assert.LessOrEqual(t, len(res.Records), 100)
	for _, rec := range res.Records {
		assert.NotEmpty(t, rec.Bundle)
	}
}

func TestRunBatchValidatesInput(t *testing.T) {
	topo := demoTopo(t)
	var cfgErr *state.ConfigError

	_, err := RunBatch(context.Background(), topo,
		"mars_rover", "earth_station", nil, state.SimConfig{}, 0, 4, nil)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "runs", cfgErr.Field)

	_, err = RunBatch(context.Background(), topo,
		"venus_probe", "earth_station", nil, state.SimConfig{}, 10, 4, nil)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "source", cfgErr.Field)
	assert.Contains(t, cfgErr.Error(), "venus_probe")

	_, err = RunBatch(context.Background(), topo,
		"mars_rover", "venus_probe", nil, state.SimConfig{}, 10, 4, nil)
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "destination", cfgErr.Field)

	_, err = RunBatch(context.Background(), topo,
		"mars_rover", "earth_station", nil, state.SimConfig{ErrorRate: -1}, 10, 4, nil)
	assert.Error(t, err)
}
