package component

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomlx/learnfn/expr"
	"github.com/gomlx/learnfn/ml/para"
	"github.com/gomlx/learnfn/types/packs"
	"github.com/gomlx/learnfn/types/xrand"
)

// scaler is a one-parameter component computing y = w*x, with weights drawn
// uniformly from [0, 1).
func scaler(w float64) Component[*expr.Expr, *expr.Expr] {
	fn := func(input *expr.Expr, params packs.Pack[*expr.Expr]) *expr.Expr {
		return expr.Mul(input, params.At(0))
	}
	init := func(state xrand.State) (packs.Pack[float64], xrand.State) {
		v, next := state.Float64()
		return packs.New(packs.Leaf{N: 1}, []float64{v}), next
	}
	return New(fn, packs.New(packs.Leaf{N: 1}, []float64{w}), init)
}

// shifter is a one-parameter component computing y = x+b.
func shifter(b float64) Component[*expr.Expr, *expr.Expr] {
	fn := func(input *expr.Expr, params packs.Pack[*expr.Expr]) *expr.Expr {
		return expr.Add(input, params.At(0))
	}
	init := func(state xrand.State) (packs.Pack[float64], xrand.State) {
		v, next := state.Float64()
		return packs.New(packs.Leaf{N: 1}, []float64{v}), next
	}
	return New(fn, packs.New(packs.Leaf{N: 1}, []float64{b}), init)
}

func activate(t *testing.T, c Component[*expr.Expr, *expr.Expr], x float64) float64 {
	t.Helper()
	v, err := c.Activate(expr.Const(x)).Constant()
	require.NoError(t, err)
	return v
}

func TestWeightsRoundTrip(t *testing.T) {
	c := scaler(3)
	assert.Equal(t, 1, c.NumParams())
	assert.Equal(t, []float64{3}, c.Weights())

	// Set(Get()) is a no-op.
	c2 := c.WithWeights(c.Weights())
	assert.Equal(t, c.Weights(), c2.Weights())

	c3 := c.WithWeights([]float64{5})
	assert.Equal(t, []float64{5}, c3.Weights())
	// The original is immutable.
	assert.Equal(t, []float64{3}, c.Weights())
	assert.Equal(t, 10.0, activate(t, c3, 2))
}

func TestWithWeightsBadLengthPanics(t *testing.T) {
	c := scaler(3)
	assert.Panics(t, func() { c.WithWeights([]float64{1, 2}) })
	assert.Panics(t, func() { c.WithWeights(nil) })
}

func TestActivateIsPure(t *testing.T) {
	c := scaler(4)
	for ii := 0; ii < 3; ii++ {
		assert.Equal(t, 8.0, activate(t, c, 2))
	}
}

func TestComposeCountAndOrder(t *testing.T) {
	f := scaler(2)  // runs second
	g := shifter(7) // runs first
	composed := Compose(f, g)

	// m+n parameters, g's (right-hand side, first to run) first.
	require.Equal(t, 2, composed.NumParams())
	assert.Equal(t, []float64{7, 2}, composed.Weights())

	// (x+7)*2 at x=1.
	assert.Equal(t, 16.0, activate(t, composed, 1))

	// Sub-weight sets stay independently addressable in the flat list.
	tweaked := composed.WithWeights([]float64{1, 10})
	assert.Equal(t, 20.0, activate(t, tweaked, 1)) // (1+1)*10
}

func TestIdentityLaws(t *testing.T) {
	c := scaler(3)
	leftId := Compose(Identity[*expr.Expr](), c)
	rightId := Compose(c, Identity[*expr.Expr]())
	for _, x := range []float64{-2, 0, 1.5} {
		want := activate(t, c, x)
		assert.Equal(t, want, activate(t, leftId, x))
		assert.Equal(t, want, activate(t, rightId, x))
	}
	assert.Equal(t, c.NumParams(), leftId.NumParams())
	assert.Equal(t, c.NumParams(), rightId.NumParams())
}

func TestComposeAssociativity(t *testing.T) {
	a, b, c := scaler(2), shifter(5), scaler(3)
	leftAssoc := Compose(Compose(a, b), c)
	rightAssoc := Compose(a, Compose(b, c))

	require.Equal(t, 3, leftAssoc.NumParams())
	require.Equal(t, 3, rightAssoc.NumParams())
	for _, x := range []float64{-1, 0, 2} {
		// (x*3+5)*2 either way.
		assert.Equal(t, (x*3+5)*2, activate(t, leftAssoc, x))
		assert.Equal(t, activate(t, leftAssoc, x), activate(t, rightAssoc, x))
	}
}

func TestLiftHasZeroParams(t *testing.T) {
	double := Lift(func(x *expr.Expr) *expr.Expr { return expr.MulScalar(x, 2) })
	assert.Equal(t, 0, double.NumParams())
	assert.Empty(t, double.Weights())
	assert.Equal(t, 6.0, activate(t, double, 3))

	// Reinitializing a lifted component is a no-op on the weights and
	// consumes no entropy.
	state := xrand.New(1)
	re, next := double.Reinitialize(state)
	assert.Equal(t, 0, re.NumParams())
	assert.Equal(t, state, next)

	// Composing with a parameterized component leaves its params alone.
	c := Compose(double, scaler(4))
	assert.Equal(t, 1, c.NumParams())
	assert.Equal(t, 24.0, activate(t, c, 3)) // 3*4*2
}

func TestReinitialize(t *testing.T) {
	c := scaler(3)
	state := xrand.New(42)
	c1, state1 := c.Reinitialize(state)
	c2, _ := c.Reinitialize(state)

	// Same source state: identical draw, and the original is untouched.
	assert.Equal(t, c1.Weights(), c2.Weights())
	assert.Equal(t, []float64{3}, c.Weights())
	assert.NotEqual(t, state, state1)

	// Fresh state: different draw.
	c3, _ := c.Reinitialize(state1)
	assert.NotEqual(t, c1.Weights(), c3.Weights())
}

func TestComposedReinitializeThreadsState(t *testing.T) {
	composed := Compose(scaler(0), shifter(0))
	state := xrand.New(7)
	re, next := composed.Reinitialize(state)

	require.Equal(t, 2, re.NumParams())
	weights := re.Weights()
	// Both halves were drawn, from successive states.
	assert.NotEqual(t, weights[0], weights[1])
	assert.NotEqual(t, state, next)

	// Reproducible given the same seed.
	re2, _ := composed.Reinitialize(xrand.New(7))
	assert.Equal(t, weights, re2.Weights())
}

func TestFirstRoutesPairs(t *testing.T) {
	c := First[*expr.Expr, *expr.Expr, string](scaler(5))
	assert.Equal(t, 1, c.NumParams())
	got := c.Activate(para.Pair[*expr.Expr, string]{First: expr.Const(2), Second: "kept"})
	assert.Equal(t, 10.0, got.First.MustConstant())
	assert.Equal(t, "kept", got.Second)
}

func TestLeftRoutesEithers(t *testing.T) {
	c := Left[*expr.Expr, *expr.Expr, string](scaler(5))
	assert.Equal(t, 1, c.NumParams())

	got := c.Activate(para.LeftOf[*expr.Expr, string](expr.Const(3)))
	require.True(t, got.IsLeft())
	assert.Equal(t, 15.0, got.Left().MustConstant())

	got = c.Activate(para.RightOf[*expr.Expr, string]("pass"))
	require.False(t, got.IsLeft())
	assert.Equal(t, "pass", got.Right())
}

func TestConvolveEquivalence(t *testing.T) {
	c := scaler(3)
	conv := Convolve(c)
	assert.Equal(t, 1, conv.NumParams())

	inputs := []*expr.Expr{expr.Const(1), expr.Const(2), expr.Const(4)}
	outputs := conv.Activate(inputs)
	require.Len(t, outputs, 3)
	for ii, input := range inputs {
		assert.Equal(t, c.Activate(input).MustConstant(), outputs[ii].MustConstant())
	}
}
