package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBernoulliModelDeterministicPerSeed(t *testing.T) {
	a := NewSeededModel(0.3, 0.3, 7)
	b := NewSeededModel(0.3, 0.3, 7)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.CheckHop("x", "y"), b.CheckHop("x", "y"))
	}
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.CheckRecovery(), b.CheckRecovery())
	}
}

func TestBernoulliModelZeroRatesNeverDisrupt(t *testing.T) {
	m := NewSeededModel(0, 0, 1)
	for i := 0; i < 1000; i++ {
		assert.False(t, m.CheckHop("x", "y"))
	}
}

func TestBernoulliModelFullRatesAlwaysDisrupt(t *testing.T) {
	m := NewSeededModel(1, 1, 1)
	for i := 0; i < 1000; i++ {
		assert.True(t, m.CheckHop("x", "y"))
	}
	// recovery draws against the midpoint, which is 1 here
	for i := 0; i < 1000; i++ {
		assert.False(t, m.CheckRecovery())
	}
}

func TestBernoulliModelEitherRateAloneDisrupts(t *testing.T) {
	onlyError := NewSeededModel(1, 0, 1)
	onlyDisruption := NewSeededModel(0, 1, 1)
	for i := 0; i < 100; i++ {
		assert.True(t, onlyError.CheckHop("x", "y"))
		assert.True(t, onlyDisruption.CheckHop("x", "y"))
	}
}

func TestNewBernoulliModelRequiresRng(t *testing.T) {
	assert.Panics(t, func() { NewBernoulliModel(0.1, 0.1, nil) })
}
