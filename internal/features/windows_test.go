package features

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLaggedRollingExcludesCurrentValue(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	out := LaggedRolling(values, 5)

	assert.True(t, math.IsNaN(out[0]), "no prior game means no average")
	assert.Equal(t, 10.0, out[1])
	assert.Equal(t, 15.0, out[2])
	assert.Equal(t, 20.0, out[3])
}

func TestLaggedRollingWindowSize(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6, 7}

	out := LaggedRolling(values, 3)

	// index 6 averages values 3,4,5 only
	assert.Equal(t, (4.0+5.0+6.0)/3.0, out[6])
}

func TestLaggedExpanding(t *testing.T) {
	values := []float64{10, 20, 30, 40}

	out := LaggedExpanding(values)

	assert.True(t, math.IsNaN(out[0]))
	assert.Equal(t, 10.0, out[1])
	assert.Equal(t, 15.0, out[2])
	assert.Equal(t, 20.0, out[3])
}

func TestLaggedOperatorsNeverSeeCurrentOutcome(t *testing.T) {
	// A huge final outcome must not move the average at its own index.
	values := []float64{10, 10, 10, 1000}

	rolling := LaggedRolling(values, 5)
	expanding := LaggedExpanding(values)

	assert.Equal(t, 10.0, rolling[3])
	assert.Equal(t, 10.0, expanding[3])
}
