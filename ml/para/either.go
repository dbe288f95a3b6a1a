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

package para

import (
	. "github.com/gomlx/exceptions"

	"github.com/gomlx/learnfn/expr"
	"github.com/gomlx/learnfn/types/packs"
)

// Either is a two-way sum: it holds exactly one of an A (the left case) or
// a B (the right case). It is the input/output type of the Left and Right
// choice combinators.
type Either[A, B any] struct {
	left   A
	right  B
	isLeft bool
}

// LeftOf creates an Either holding the left case.
func LeftOf[A, B any](value A) Either[A, B] {
	return Either[A, B]{left: value, isLeft: true}
}

// RightOf creates an Either holding the right case.
func RightOf[A, B any](value B) Either[A, B] {
	return Either[A, B]{right: value}
}

// IsLeft reports whether the left case is held.
func (e Either[A, B]) IsLeft() bool { return e.isLeft }

// Left returns the left case; it panics if the right case is held.
func (e Either[A, B]) Left() A {
	if !e.isLeft {
		Panicf("Either.Left called on a right value")
	}
	return e.left
}

// Right returns the right case; it panics if the left case is held.
func (e Either[A, B]) Right() B {
	if e.isLeft {
		Panicf("Either.Right called on a left value")
	}
	return e.right
}

// Left applies f only when the left case is held, passing right values
// through unchanged.
func Left[A, B, C any](f Func[A, B]) Func[Either[A, C], Either[B, C]] {
	return func(input Either[A, C], params packs.Pack[*expr.Expr]) Either[B, C] {
		if input.IsLeft() {
			return LeftOf[B, C](f(input.Left(), params))
		}
		return RightOf[B, C](input.Right())
	}
}

// Right applies f only when the right case is held, passing left values
// through unchanged.
func Right[A, B, C any](f Func[A, B]) Func[Either[C, A], Either[C, B]] {
	return func(input Either[C, A], params packs.Pack[*expr.Expr]) Either[C, B] {
		if input.IsLeft() {
			return LeftOf[C, B](input.Left())
		}
		return RightOf[C, B](f(input.Right(), params))
	}
}
