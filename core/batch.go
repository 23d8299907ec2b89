package core

import (
	"context"
	"fmt"
	"sync"

	"github.com/relaymesh/dtnsim/metrics"
	"github.com/relaymesh/dtnsim/state"
)

// BatchResult aggregates the outcome of a seed sweep.
type BatchResult struct {
	Records       []StatsRecord `json:"records"`
	Delivered     int           `json:"delivered"`
	Failed        int           `json:"failed"`
	DeliveryRatio float64       `json:"delivery_ratio"`
	// MeanDelay is the mean logical delay of delivered runs, seconds.
	MeanDelay            float64 `json:"mean_delay"`
	TotalDisruptions     int     `json:"total_disruptions"`
	TotalRetransmissions int     `json:"total_retransmissions"`
}

// RunBatch executes `runs` independent simulations of the same
// source/destination pair, each with a private buffer store, disruption
// model and random source derived from cfg.Seed, sharing only the immutable
// topology. Runs execute on up to `parallelism` goroutines. A cancelled
// context stops the sweep; already-started runs terminate promptly as
// Failed(Cancelled) and are included in the result.
func RunBatch(ctx context.Context, topo *Topology, source, destination state.NodeId,
	payload []byte, cfg state.SimConfig, runs, parallelism int, observer Observer) (BatchResult, error) {
	cfg.ApplyDefaults()
	if err := state.SimConfigValidator(&cfg); err != nil {
		return BatchResult{}, err
	}
	if !topo.HasNode(source) {
		return BatchResult{}, &state.ConfigError{Field: "source", Reason: fmt.Sprintf("node %s not defined", source)}
	}
	if !topo.HasNode(destination) {
		return BatchResult{}, &state.ConfigError{Field: "destination", Reason: fmt.Sprintf("node %s not defined", destination)}
	}
	if runs < 1 {
		return BatchResult{}, &state.ConfigError{Field: "runs", Reason: "must be >= 1"}
	}
	if parallelism < 1 {
		parallelism = 1
	}
	baseSeed := cfg.Seed
	if baseSeed == 0 {
		baseSeed = 1
	}

	records := make([]StatsRecord, runs)
	work := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < parallelism; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range work {
				runCfg := cfg
				runCfg.Seed = baseSeed + uint64(i)
				rec, err := Simulate(ctx, topo, source, destination, payload, runCfg, observer)
				if err != nil {
					// config was validated up front; per-run wiring
					// cannot fail
					panic(err)
				}
				records[i] = rec
			}
		}()
	}
feed:
	for i := 0; i < runs; i++ {
		select {
		case work <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(work)
	wg.Wait()

	res := BatchResult{}
	deliveredDelay := 0.0
	for _, rec := range records {
		if rec.Bundle == "" {
			continue // never started: sweep was cancelled early
		}
		res.Records = append(res.Records, rec)
		delivered := rec.Status == StatusDelivered
		if delivered {
			res.Delivered++
			deliveredDelay += rec.TotalDelay
		} else {
			res.Failed++
		}
		res.TotalDisruptions += rec.Disruptions
		res.TotalRetransmissions += rec.TotalRetransmissions
		metrics.ObserveRun(string(rec.Status), string(rec.Reason), delivered,
			rec.TotalDelay, rec.Disruptions, rec.TotalRetransmissions)
	}
	if n := res.Delivered + res.Failed; n > 0 {
		res.DeliveryRatio = float64(res.Delivered) / float64(n)
	}
	if res.Delivered > 0 {
		res.MeanDelay = deliveredDelay / float64(res.Delivered)
	}
	return res, nil
}
