package expr

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstArithmetic(t *testing.T) {
	a, b := Const(3), Const(4)
	assert.Equal(t, 7.0, Add(a, b).MustConstant())
	assert.Equal(t, -1.0, Sub(a, b).MustConstant())
	assert.Equal(t, 12.0, Mul(a, b).MustConstant())
	assert.Equal(t, 0.75, Div(a, b).MustConstant())
	assert.Equal(t, -3.0, Neg(a).MustConstant())
	assert.Equal(t, 9.0, Square(a).MustConstant())
	assert.Equal(t, 2.0, Sqrt(b).MustConstant())
	assert.Equal(t, 81.0, Pow(a, 4).MustConstant())
	assert.InDelta(t, math.Exp(3), Exp(a).MustConstant(), 1e-12)
	assert.InDelta(t, math.Log(3), Log(a).MustConstant(), 1e-12)
	assert.InDelta(t, math.Tanh(3), Tanh(a).MustConstant(), 1e-12)
	assert.InDelta(t, 1/(1+math.Exp(-3)), Sigmoid(a).MustConstant(), 1e-12)
	assert.Equal(t, 3.0, Relu(a).MustConstant())
	assert.Equal(t, 0.0, Relu(Const(-2)).MustConstant())
	assert.Equal(t, 5.0, AddScalar(a, 2).MustConstant())
	assert.Equal(t, 6.0, MulScalar(a, 2).MustConstant())
}

func TestConstFolding(t *testing.T) {
	e := Mul(Add(Const(1), Const(2)), Const(3))
	assert.True(t, e.IsConst())
	v, err := e.Constant()
	require.NoError(t, err)
	assert.Equal(t, 9.0, v)
}

func TestVectorHelpers(t *testing.T) {
	xs := []*Expr{Const(1), Const(2), Const(3)}
	assert.Equal(t, 6.0, Sum(xs).MustConstant())
	assert.Equal(t, 2.0, Mean(xs).MustConstant())

	ys := []*Expr{Const(4), Const(5), Const(6)}
	assert.Equal(t, 32.0, Dot(xs, ys).MustConstant())
	assert.Panics(t, func() { Dot(xs, ys[:2]) })
}

func TestNonConstantProjection(t *testing.T) {
	leaf := newVar(0, 1.5)
	assert.False(t, leaf.IsConst())
	_, err := leaf.Constant()
	assert.Error(t, err)
	assert.Panics(t, func() { leaf.MustConstant() })

	// A mix of constants and parameters is not constant either.
	e := Add(leaf, Const(1))
	assert.False(t, e.IsConst())
	assert.Panics(t, func() { e.MustConstant() })
	// But its eager value is still right.
	assert.Equal(t, 2.5, e.value)
}
