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

// Package packs defines Shape and Pack: fixed-arity containers of numeric
// (or symbolic) parameter values, the unit of weight storage for components.
//
// A Shape describes only the structure of a pack -- how many values it holds
// and how they nest. A Pack pairs a Shape with the values themselves, stored
// flattened. The flattened order is the only externally observable order:
// for a Pair shape it is always (all of Left's values, then all of Right's
// values), and every operation below preserves it.
//
// Packs are immutable values: operations return new packs, never modify the
// receiver. Length mismatches when rebuilding a pack from a flat slice are
// programming errors and panic (see exceptions.Panicf), they are not
// recoverable errors.
package packs

import (
	"fmt"

	. "github.com/gomlx/exceptions"
)

// Shape describes the structure (arity and nesting) of a Pack, independent
// of the element type. The closed set of implementations is Empty, Leaf and
// Pair.
type Shape interface {
	// Count returns the fixed number of values a pack of this shape holds.
	// It is constant for a given shape.
	Count() int

	// String returns a compact human-readable description, for error
	// messages.
	String() string
}

// Empty is the shape of a pack with no parameters. Used by lifted pure
// functions.
type Empty struct{}

// Count implements Shape.
func (Empty) Count() int { return 0 }

func (Empty) String() string { return "()" }

// Leaf is the shape of a flat vector of N parameters, the building block
// primitive components declare for themselves.
type Leaf struct {
	N int
}

// Count implements Shape.
func (l Leaf) Count() int { return l.N }

func (l Leaf) String() string { return fmt.Sprintf("[%d]", l.N) }

// Pair is the concatenation of two sub-shapes. The flattened order of a
// Pair pack is Left's values followed by Right's values.
type Pair struct {
	Left, Right Shape
}

// Count implements Shape.
func (p Pair) Count() int { return p.Left.Count() + p.Right.Count() }

func (p Pair) String() string { return fmt.Sprintf("(%s+%s)", p.Left, p.Right) }

// Pack is an immutable, fixed-shape container of values of type T.
// The zero value is a valid empty pack.
//
// T is float64 for concrete weights, or a symbolic expression type while
// building a gradient computation -- see the expr package.
type Pack[T any] struct {
	shape  Shape
	values []T
}

// New creates a pack of the given shape from the flat values, in the
// shape's flattened order. It panics if len(values) != shape.Count().
//
// The values slice is copied, the caller keeps ownership of its slice.
func New[T any](shape Shape, values []T) Pack[T] {
	if shape == nil {
		shape = Empty{}
	}
	if len(values) != shape.Count() {
		Panicf("packs.New: shape %s holds %d values, got %d", shape, shape.Count(), len(values))
	}
	flat := make([]T, len(values))
	copy(flat, values)
	return Pack[T]{shape: shape, values: flat}
}

// NewFilled creates a pack of the given shape with every value set to value.
func NewFilled[T any](shape Shape, value T) Pack[T] {
	if shape == nil {
		shape = Empty{}
	}
	flat := make([]T, shape.Count())
	for ii := range flat {
		flat[ii] = value
	}
	return Pack[T]{shape: shape, values: flat}
}

// Shape returns the pack's shape.
func (p Pack[T]) Shape() Shape {
	if p.shape == nil {
		return Empty{}
	}
	return p.shape
}

// Count returns the number of values held, shorthand for p.Shape().Count().
func (p Pack[T]) Count() int { return len(p.values) }

// Flat returns the pack's values in flattened order. The returned slice is
// a copy; mutating it does not affect the pack.
func (p Pack[T]) Flat() []T {
	flat := make([]T, len(p.values))
	copy(flat, p.values)
	return flat
}

// At returns the value at the given flat index.
func (p Pack[T]) At(idx int) T { return p.values[idx] }

// WithFlat returns a new pack with the same shape and the given values.
// It panics if len(values) != p.Count(): silently truncating or padding a
// weight vector would corrupt a model, so a mismatch is fatal.
//
// WithFlat(Flat()) is always equivalent to the original pack.
func (p Pack[T]) WithFlat(values []T) Pack[T] {
	if len(values) != len(p.values) {
		Panicf("Pack.WithFlat: pack shape %s holds %d values, got %d", p.Shape(), len(p.values), len(values))
	}
	return New(p.Shape(), values)
}

// Fill returns a new pack of the same shape with every value set to value.
func (p Pack[T]) Fill(value T) Pack[T] {
	return NewFilled(p.Shape(), value)
}

// PairOf combines two packs into one whose shape is Pair{left, right} and
// whose flattened order is left's values followed by right's values.
// The combined count is left.Count()+right.Count().
func PairOf[T any](left, right Pack[T]) Pack[T] {
	flat := make([]T, 0, left.Count()+right.Count())
	flat = append(flat, left.values...)
	flat = append(flat, right.values...)
	return Pack[T]{
		shape:  Pair{Left: left.Shape(), Right: right.Shape()},
		values: flat,
	}
}

// Split is the inverse of PairOf: it returns the left and right halves of a
// pack with a Pair shape. It panics if the pack's shape is not a Pair.
func (p Pack[T]) Split() (left, right Pack[T]) {
	pair, ok := p.Shape().(Pair)
	if !ok {
		Panicf("Pack.Split: shape %s is not a Pair", p.Shape())
	}
	mid := pair.Left.Count()
	left = Pack[T]{shape: pair.Left, values: p.values[:mid]}
	right = Pack[T]{shape: pair.Right, values: p.values[mid:]}
	return
}

// Convert maps a pack elementwise to a new element type, preserving shape
// and order. It is how concrete float64 weights are injected into symbolic
// expressions before building a gradient.
func Convert[A, B any](p Pack[A], fn func(A) B) Pack[B] {
	flat := make([]B, len(p.values))
	for ii, v := range p.values {
		flat[ii] = fn(v)
	}
	return Pack[B]{shape: p.Shape(), values: flat}
}
