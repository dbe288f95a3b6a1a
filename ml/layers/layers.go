/*
 *	Copyright 2023 Jan Pfeifer
 *
 *	Licensed under the Apache License, Version 2.0 (the "License");
 *	you may not use this file except in compliance with the License.
 *	You may obtain a copy of the License at
 *
 *	http://www.apache.org/licenses/LICENSE-2.0
 *
 *	Unless required by applicable law or agreed to in writing, software
 *	distributed under the License is distributed on an "AS IS" BASIS,
 *	WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 *	See the License for the specific language governing permissions and
 *	limitations under the License.
 */

// Package layers holds primitive components to compose models from: scalar
// scale/shift, affine maps, dense layers and activation functions.
//
// A small convention on naming: layers are nouns ("Dense", "Scale"), while
// computations are verbs ("Convolve", "Compose").
package layers

import (
	. "github.com/gomlx/exceptions"

	"github.com/gomlx/learnfn/expr"
	"github.com/gomlx/learnfn/ml/component"
	"github.com/gomlx/learnfn/ml/initializers"
	"github.com/gomlx/learnfn/types/packs"
)

// Scale is a one-parameter component computing y = w*x. The initializer
// redraws w from a normal with the given stddev.
func Scale(w, initStddev float64) component.Component[*expr.Expr, *expr.Expr] {
	shape := packs.Leaf{N: 1}
	fn := func(input *expr.Expr, params packs.Pack[*expr.Expr]) *expr.Expr {
		return expr.Mul(input, params.At(0))
	}
	return component.New(fn, packs.New(shape, []float64{w}), initializers.NormalFn(shape, initStddev))
}

// Shift is a one-parameter component computing y = x+b.
func Shift(b, initStddev float64) component.Component[*expr.Expr, *expr.Expr] {
	shape := packs.Leaf{N: 1}
	fn := func(input *expr.Expr, params packs.Pack[*expr.Expr]) *expr.Expr {
		return expr.Add(input, params.At(0))
	}
	return component.New(fn, packs.New(shape, []float64{b}), initializers.NormalFn(shape, initStddev))
}

// Affine maps a vector of numInputs values to w·x + b. Its pack holds
// numInputs weights followed by one bias, all starting at zero.
func Affine(numInputs int, initStddev float64) component.Component[[]*expr.Expr, *expr.Expr] {
	if numInputs <= 0 {
		Panicf("layers.Affine: numInputs must be positive, got %d", numInputs)
	}
	shape := packs.Leaf{N: numInputs + 1}
	fn := func(input []*expr.Expr, params packs.Pack[*expr.Expr]) *expr.Expr {
		if len(input) != numInputs {
			Panicf("layers.Affine built for %d inputs, activated with %d", numInputs, len(input))
		}
		flat := params.Flat()
		return expr.Add(expr.Dot(flat[:numInputs], input), flat[numInputs])
	}
	return component.New(fn, packs.NewFilled(shape, 0.0), initializers.NormalFn(shape, initStddev))
}

// Dense maps a vector of numInputs values to numOutputs affine
// combinations, the fully-connected layer. The pack flat order is row
// after row, each row its numInputs weights then its bias.
func Dense(numInputs, numOutputs int, initStddev float64) component.Component[[]*expr.Expr, []*expr.Expr] {
	if numInputs <= 0 || numOutputs <= 0 {
		Panicf("layers.Dense: sizes must be positive, got %d inputs, %d outputs", numInputs, numOutputs)
	}
	rowSize := numInputs + 1
	shape := packs.Leaf{N: numOutputs * rowSize}
	fn := func(input []*expr.Expr, params packs.Pack[*expr.Expr]) []*expr.Expr {
		if len(input) != numInputs {
			Panicf("layers.Dense built for %d inputs, activated with %d", numInputs, len(input))
		}
		flat := params.Flat()
		outputs := make([]*expr.Expr, numOutputs)
		for ii := range outputs {
			row := flat[ii*rowSize : (ii+1)*rowSize]
			outputs[ii] = expr.Add(expr.Dot(row[:numInputs], input), row[numInputs])
		}
		return outputs
	}
	return component.New(fn, packs.NewFilled(shape, 0.0), initializers.NormalFn(shape, initStddev))
}

// Activation lifts a scalar activation elementwise over a vector, with zero
// parameters.
func Activation(fn func(*expr.Expr) *expr.Expr) component.Component[[]*expr.Expr, []*expr.Expr] {
	return component.Lift(func(input []*expr.Expr) []*expr.Expr {
		outputs := make([]*expr.Expr, len(input))
		for ii, x := range input {
			outputs[ii] = fn(x)
		}
		return outputs
	})
}

// Tanh is the elementwise hyperbolic tangent activation.
func Tanh() component.Component[[]*expr.Expr, []*expr.Expr] { return Activation(expr.Tanh) }

// Sigmoid is the elementwise logistic activation.
func Sigmoid() component.Component[[]*expr.Expr, []*expr.Expr] { return Activation(expr.Sigmoid) }

// Relu is the elementwise rectified linear activation.
func Relu() component.Component[[]*expr.Expr, []*expr.Expr] { return Activation(expr.Relu) }
