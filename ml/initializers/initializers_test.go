package initializers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/learnfn/types/packs"
	"github.com/gomlx/learnfn/types/xrand"
)

func TestConstantFn(t *testing.T) {
	init := ConstantFn(packs.Leaf{N: 3}, 1.5)
	state := xrand.New(1)
	pack, next := init(state)
	assert.Equal(t, []float64{1.5, 1.5, 1.5}, pack.Flat())
	// No entropy consumed.
	assert.Equal(t, state, next)

	zeros, _ := Zero(packs.Leaf{N: 2})(state)
	assert.Equal(t, []float64{0, 0}, zeros.Flat())
}

func TestNormalFnIsReproducible(t *testing.T) {
	shape := packs.Pair{Left: packs.Leaf{N: 2}, Right: packs.Leaf{N: 3}}
	init := NormalFn(shape, 0.5)

	p1, next1 := init(xrand.New(42))
	p2, next2 := init(xrand.New(42))
	require.Equal(t, 5, p1.Count())
	assert.Equal(t, p1.Flat(), p2.Flat())
	assert.Equal(t, next1, next2)
	assert.Equal(t, shape, p1.Shape())

	// A different seed draws different values.
	p3, _ := init(xrand.New(43))
	assert.NotEqual(t, p1.Flat(), p3.Flat())
}

func TestUniformFnRange(t *testing.T) {
	init := UniformFn(packs.Leaf{N: 100}, -2, 3)
	pack, _ := init(xrand.New(7))
	for _, v := range pack.Flat() {
		assert.GreaterOrEqual(t, v, -2.0)
		assert.Less(t, v, 3.0)
	}
	assert.Panics(t, func() { UniformFn(packs.Leaf{N: 1}, 1, 0) })
}

func TestByName(t *testing.T) {
	shape := packs.Leaf{N: 4}
	for name := range KnownInitializers {
		pack, _ := ByName(name, shape)(xrand.New(1))
		assert.Equal(t, 4, pack.Count(), "initializer %q", name)
	}
	assert.Panics(t, func() { ByName("no-such-initializer", shape) })
}
