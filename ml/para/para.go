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

// Package para defines parameterized functions -- pure functions of
// (input, parameter pack) -> output -- and the combinators to compose them.
//
// A Func must be referentially transparent: its output may depend only on
// the input and the pack values, never on call history or the clock. Under
// that contract the combinators below satisfy the category laws: Compose is
// associative and Identity is its neutral element, for every input and
// every weight assignment.
//
// Note the sharing rule: Compose threads one single pack through the whole
// chain, both sides see the identical parameter set. Splitting a combined
// pack between two functions is the component package's job, not this one's.
package para

import (
	"github.com/gomlx/learnfn/expr"
	"github.com/gomlx/learnfn/types/packs"
)

// Func is a parameterized function from I to O. The pack holds symbolic
// parameter values so the same Func serves both plain evaluation (constants
// injected with expr.Const) and gradient construction (parameter leaves
// materialized by expr.Gradient).
type Func[I, O any] func(input I, params packs.Pack[*expr.Expr]) O

// Identity returns the input unchanged and ignores the pack.
func Identity[I any]() Func[I, I] {
	return func(input I, _ packs.Pack[*expr.Expr]) I { return input }
}

// Lift turns a pure function into a parameterized one that ignores its
// pack. Lifted functions carry zero parameters (the Empty shape).
func Lift[I, O any](fn func(I) O) Func[I, O] {
	return func(input I, _ packs.Pack[*expr.Expr]) O { return fn(input) }
}

// Compose chains g then f: the input runs through g first and g's output
// through f. Both receive the same pack.
func Compose[A, B, C any](f Func[B, C], g Func[A, B]) Func[A, C] {
	return func(input A, params packs.Pack[*expr.Expr]) C {
		return f(g(input, params), params)
	}
}

// Pair is an ordered pair of values, the input/output type of First and
// Second.
type Pair[A, B any] struct {
	First  A
	Second B
}

// First applies f to the first element of a pair and passes the second
// through unchanged.
func First[A, B, C any](f Func[A, B]) Func[Pair[A, C], Pair[B, C]] {
	return func(input Pair[A, C], params packs.Pack[*expr.Expr]) Pair[B, C] {
		return Pair[B, C]{First: f(input.First, params), Second: input.Second}
	}
}

// Second applies f to the second element of a pair and passes the first
// through unchanged.
func Second[A, B, C any](f Func[A, B]) Func[Pair[C, A], Pair[C, B]] {
	return func(input Pair[C, A], params packs.Pack[*expr.Expr]) Pair[C, B] {
		return Pair[C, B]{First: input.First, Second: f(input.Second, params)}
	}
}

// Convolve applies f with the same pack to every element of a sequence,
// producing a same-length sequence in the same order. This is how one
// weight set is shared across a whole batch.
func Convolve[I, O any](f Func[I, O]) Func[[]I, []O] {
	return func(inputs []I, params packs.Pack[*expr.Expr]) []O {
		outputs := make([]O, len(inputs))
		for ii, input := range inputs {
			outputs[ii] = f(input, params)
		}
		return outputs
	}
}
