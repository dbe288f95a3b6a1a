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

// Package component bundles a parameterized function with its current
// weights and a random re-initializer, forming the trainable building block
// that models are assembled from.
//
// A Component is an immutable value: operations that change weights return
// a new Component. Its pack shape is an implementation detail -- callers
// only ever see the weights as a flat ordered []float64 through Weights and
// WithWeights.
//
// Composing components combines their packs: Compose(f, g) pairs g's pack
// before f's in the flattened order, matching "right-hand side runs first".
// Both sub-weight sets stay independently addressable inside the combined
// flat list.
package component

import (
	"github.com/gomlx/learnfn/expr"
	"github.com/gomlx/learnfn/ml/para"
	"github.com/gomlx/learnfn/types/packs"
	"github.com/gomlx/learnfn/types/xrand"
)

// Initializer is a capability that draws a freshly sampled weight pack from
// an explicitly supplied random source, returning the successor source.
// Initializers are reused unchanged across re-initializations.
type Initializer func(state xrand.State) (packs.Pack[float64], xrand.State)

// Component is a parameterized function together with its current weights
// and the Initializer they were (or can be re-) drawn from.
type Component[I, O any] struct {
	fn      para.Func[I, O]
	weights packs.Pack[float64]
	init    Initializer
}

// New creates a Component from a parameterized function, its current
// weights and its initializer.
func New[I, O any](fn para.Func[I, O], weights packs.Pack[float64], init Initializer) Component[I, O] {
	return Component[I, O]{fn: fn, weights: weights, init: init}
}

// Lift wraps a pure function as a Component with zero parameters.
func Lift[I, O any](fn func(I) O) Component[I, O] {
	empty := packs.Pack[float64]{}
	return Component[I, O]{
		fn:      para.Lift(fn),
		weights: empty,
		init: func(state xrand.State) (packs.Pack[float64], xrand.State) {
			return empty, state
		},
	}
}

// Identity is the neutral element of Compose.
func Identity[I any]() Component[I, I] {
	return Lift(func(input I) I { return input })
}

// NumParams returns the total number of trainable parameters.
func (c Component[I, O]) NumParams() int { return c.weights.Count() }

// Weights returns the current weights as a flat ordered list. The slice is
// a copy.
func (c Component[I, O]) Weights() []float64 { return c.weights.Flat() }

// WithWeights returns a new Component with the given flat weight values.
// It panics if len(values) != NumParams(). WithWeights(Weights()) is a
// no-op.
func (c Component[I, O]) WithWeights(values []float64) Component[I, O] {
	return c.withPack(c.weights.WithFlat(values))
}

// Function returns the underlying parameterized function.
func (c Component[I, O]) Function() para.Func[I, O] { return c.fn }

// WeightsPack returns the current weights with their shape. Mostly of use
// to the model package when building gradients.
func (c Component[I, O]) WeightsPack() packs.Pack[float64] { return c.weights }

// WithWeightsPack returns a new Component holding the given pack, which
// must have the same shape as the current one (same count at least --
// packs produced by expr.Gradient from this component's pack always do).
func (c Component[I, O]) WithWeightsPack(weights packs.Pack[float64]) Component[I, O] {
	return c.withPack(weights)
}

func (c Component[I, O]) withPack(weights packs.Pack[float64]) Component[I, O] {
	return Component[I, O]{fn: c.fn, weights: weights, init: c.init}
}

// Initializer returns the component's re-initializer capability.
func (c Component[I, O]) Initializer() Initializer { return c.init }

// Activate runs the function on input at the current weights. It is pure:
// no side effects, same output for the same input and weights.
func (c Component[I, O]) Activate(input I) O {
	return c.fn(input, packs.Convert(c.weights, expr.Const))
}

// Reinitialize draws fresh weights from the initializer, consuming entropy
// from state. The function and initializer are kept; only the weights
// change.
func (c Component[I, O]) Reinitialize(state xrand.State) (Component[I, O], xrand.State) {
	fresh, next := c.init(state)
	return c.withPack(fresh), next
}

// Compose chains g then f into one Component: input runs through g first,
// g's output through f. The combined pack is PairOf(g's pack, f's pack) --
// g's weights come first in the flat order -- and the combined initializer
// draws g's weights, then f's, threading the random source through both.
func Compose[A, B, C any](f Component[B, C], g Component[A, B]) Component[A, C] {
	fFn, gFn := f.fn, g.fn
	fn := func(input A, params packs.Pack[*expr.Expr]) C {
		gParams, fParams := params.Split()
		return fFn(gFn(input, gParams), fParams)
	}
	fInit, gInit := f.init, g.init
	init := func(state xrand.State) (packs.Pack[float64], xrand.State) {
		gPack, state := gInit(state)
		fPack, state := fInit(state)
		return packs.PairOf(gPack, fPack), state
	}
	return Component[A, C]{
		fn:      fn,
		weights: packs.PairOf(g.weights, f.weights),
		init:    init,
	}
}

// First routes a pair input through c on its first element, leaving the
// second element, the weights and the initializer untouched.
func First[A, B, C any](c Component[A, B]) Component[para.Pair[A, C], para.Pair[B, C]] {
	return Component[para.Pair[A, C], para.Pair[B, C]]{
		fn:      para.First[A, B, C](c.fn),
		weights: c.weights,
		init:    c.init,
	}
}

// Second routes a pair input through c on its second element.
func Second[A, B, C any](c Component[A, B]) Component[para.Pair[C, A], para.Pair[C, B]] {
	return Component[para.Pair[C, A], para.Pair[C, B]]{
		fn:      para.Second[A, B, C](c.fn),
		weights: c.weights,
		init:    c.init,
	}
}

// Left applies c only to the left case of an Either input, passing right
// values through unchanged.
func Left[A, B, C any](c Component[A, B]) Component[para.Either[A, C], para.Either[B, C]] {
	return Component[para.Either[A, C], para.Either[B, C]]{
		fn:      para.Left[A, B, C](c.fn),
		weights: c.weights,
		init:    c.init,
	}
}

// Right applies c only to the right case of an Either input.
func Right[A, B, C any](c Component[A, B]) Component[para.Either[C, A], para.Either[C, B]] {
	return Component[para.Either[C, A], para.Either[C, B]]{
		fn:      para.Right[A, B, C](c.fn),
		weights: c.weights,
		init:    c.init,
	}
}

// Convolve applies c elementwise over a slice input with one shared weight
// set, preserving order. The training loop uses this to run a whole batch
// at identical weights.
func Convolve[I, O any](c Component[I, O]) Component[[]I, []O] {
	return Component[[]I, []O]{
		fn:      para.Convolve(c.fn),
		weights: c.weights,
		init:    c.init,
	}
}
