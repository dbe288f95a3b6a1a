package model

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gomlx/learnfn/expr"
	"github.com/gomlx/learnfn/ml/layers"
	"github.com/gomlx/learnfn/ml/train/losses"
	"github.com/gomlx/learnfn/types/xrand"
)

// linearModel is the toy scenario: y = w*x with a single weight w, squared
// error loss, raw inputs and outputs plain float64.
func linearModel(w float64) Model[Example[float64, float64], float64, float64, *expr.Expr, *expr.Expr] {
	return NewStandard(
		layers.Scale(w, 1.0),
		expr.Const,
		func(output *expr.Expr) float64 { return output.MustConstant() },
		func(output *expr.Expr, target float64) *expr.Expr {
			return losses.SquaredError(output, target)
		})
}

// trueSlope2 is a batch whose exact solution is w=2.
var trueSlope2 = []Example[float64, float64]{
	{Input: 1, Target: 2},
	{Input: 2, Target: 4},
}

func TestPredict(t *testing.T) {
	m := linearModel(3)
	assert.Equal(t, 6.0, m.Predict(2))
	assert.Equal(t, 0.0, m.Predict(0))
	assert.Equal(t, 1, m.NumParams())
}

func TestMeanLoss(t *testing.T) {
	// At w=0 the predictions are 0, errors 2 and 4: mean of 4 and 16.
	m := linearModel(0)
	assert.Equal(t, 10.0, m.MeanLoss(trueSlope2))

	// At the exact solution the loss vanishes.
	assert.Equal(t, 0.0, linearModel(2).MeanLoss(trueSlope2))
}

func TestEmptyBatchPanics(t *testing.T) {
	m := linearModel(0)
	assert.Panics(t, func() { m.MeanLoss(nil) })
	assert.Panics(t, func() { m.Descent(0.1, nil) })
}

func TestDescentStep(t *testing.T) {
	m := linearModel(0)
	lossBefore, next := m.Descent(0.1, trueSlope2)

	// Loss before the step is the loss at w=0.
	assert.Equal(t, 10.0, lossBefore)

	// d/dw mean((w*x-y)^2) at w=0 is mean(2x(wx-y)) = mean(-4, -16) = -10,
	// so the step moves w from 0 to 0 - 0.1*(-10) = 1: strictly toward 2.
	w := next.Weights()[0]
	assert.InDelta(t, 1.0, w, 1e-12)

	// The input model is unchanged.
	assert.Equal(t, []float64{0}, m.Weights())
	assert.Equal(t, 10.0, m.MeanLoss(trueSlope2))
}

func TestDescentPurity(t *testing.T) {
	m := linearModel(0.5)
	loss1, next1 := m.Descent(0.05, trueSlope2)
	loss2, next2 := m.Descent(0.05, trueSlope2)
	assert.Equal(t, loss1, loss2)
	assert.Equal(t, next1.Weights(), next2.Weights())
}

func TestDescentConverges(t *testing.T) {
	m := linearModel(0)
	prevLoss := m.MeanLoss(trueSlope2)
	for step := 0; step < 100; step++ {
		var loss float64
		loss, m = m.Descent(0.05, trueSlope2)
		// Error strictly decreases at a sufficiently small rate, until
		// floating point runs out of resolution near the optimum.
		if loss > 0 {
			assert.Less(t, loss, prevLoss+1e-15, "step %d", step)
		}
		prevLoss = loss
	}
	assert.InDelta(t, 2.0, m.Weights()[0], 1e-3)
	assert.Less(t, m.MeanLoss(trueSlope2), 1e-6)
}

func TestWithWeights(t *testing.T) {
	m := linearModel(0).WithWeights([]float64{2})
	assert.Equal(t, 4.0, m.Predict(2))
	assert.Panics(t, func() { m.WithWeights([]float64{1, 2}) })
}

func TestResample(t *testing.T) {
	m := linearModel(0)
	m1, state1 := m.Resample(xrand.New(11))
	m2, _ := m.Resample(state1)

	// Different random-source states give different weights, identical
	// structure.
	assert.NotEqual(t, m1.Weights(), m2.Weights())
	assert.Equal(t, m1.NumParams(), m2.NumParams())

	// Both still predict linearly with their own slope.
	w := m1.Weights()[0]
	assert.InDelta(t, 3*w, m1.Predict(3), 1e-12)

	// Same state reproduces the same model.
	m3, _ := m.Resample(xrand.New(11))
	assert.Equal(t, m1.Weights(), m3.Weights())
}

func TestNewValidation(t *testing.T) {
	comp := layers.Scale(0, 1)
	assert.Panics(t, func() {
		New[Example[float64, float64], float64, float64](comp, nil, nil, nil)
	})
	assert.Panics(t, func() {
		NewStandard[float64, float64](comp, expr.Const,
			func(o *expr.Expr) float64 { return o.MustConstant() }, nil)
	})
}

func TestCustomSampleEncoder(t *testing.T) {
	// A model whose samples carry their own per-sample weighting of the
	// loss, exercising the general (non-standard) constructor.
	type weighted struct {
		x, y, scale float64
	}
	m := New(
		layers.Scale(1, 1.0),
		func(s weighted) (*expr.Expr, LossFn[*expr.Expr]) {
			return expr.Const(s.x), func(output *expr.Expr) *expr.Expr {
				return expr.MulScalar(losses.SquaredError(output, s.y), s.scale)
			}
		},
		expr.Const,
		func(output *expr.Expr) float64 { return output.MustConstant() })

	batch := []weighted{
		{x: 1, y: 0, scale: 1}, // loss 1 at w=1
		{x: 2, y: 0, scale: 3}, // loss 4, scaled to 12
	}
	assert.Equal(t, 6.5, m.MeanLoss(batch))
}
