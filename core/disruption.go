package core

import (
	"math/rand/v2"

	"github.com/relaymesh/dtnsim/state"
)

// DisruptionModel decides whether a hop attempt is disrupted and whether a
// disrupted link recovers on retry. The transmission engine performs
// exactly one CheckHop per hop attempt.
type DisruptionModel interface {
	CheckHop(a, b state.NodeId) bool
	CheckRecovery() bool
}

// BernoulliModel draws independent per-hop disruption trials from a private
// random source. The source is injected so runs are reproducible; the model
// never touches the process-global generator.
type BernoulliModel struct {
	errorRate      float64
	disruptionRate float64
	rng            *rand.Rand
}

func NewBernoulliModel(errorRate, disruptionRate float64, rng *rand.Rand) *BernoulliModel {
	if rng == nil {
		panic("BernoulliModel requires an injected random source")
	}
	return &BernoulliModel{
		errorRate:      errorRate,
		disruptionRate: disruptionRate,
		rng:            rng,
	}
}

// NewSeededModel builds a BernoulliModel with a PCG source seeded from the
// given seed.
func NewSeededModel(errorRate, disruptionRate float64, seed uint64) *BernoulliModel {
	return NewBernoulliModel(errorRate, disruptionRate, rand.New(rand.NewPCG(seed, seed)))
}

// CheckHop draws one trial against the error rate and one against the
// disruption rate; either success marks the hop disrupted.
func (m *BernoulliModel) CheckHop(a, b state.NodeId) bool {
	errHit := m.rng.Float64() < m.errorRate
	disHit := m.rng.Float64() < m.disruptionRate
	return errHit || disHit
}

// CheckRecovery draws a single trial against the midpoint of the two rates;
// a draw above the midpoint signals that the link has recovered.
func (m *BernoulliModel) CheckRecovery() bool {
	return m.rng.Float64() > (m.errorRate+m.disruptionRate)/2
}
