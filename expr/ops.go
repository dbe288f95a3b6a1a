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

package expr

import (
	"math"

	. "github.com/gomlx/exceptions"
)

// newNode builds an operation node, computing its value eagerly. If every
// input is constant the node is folded into a plain constant.
func newNode(op opType, value float64, inputs ...*Expr) *Expr {
	for _, in := range inputs {
		if !in.isConst {
			return &Expr{op: op, inputs: inputs, value: value}
		}
	}
	return Const(value)
}

// Add returns a+b.
func Add(a, b *Expr) *Expr {
	return newNode(opAdd, a.value+b.value, a, b)
}

// Sub returns a-b.
func Sub(a, b *Expr) *Expr {
	return newNode(opSub, a.value-b.value, a, b)
}

// Mul returns a*b.
func Mul(a, b *Expr) *Expr {
	return newNode(opMul, a.value*b.value, a, b)
}

// Div returns a/b.
func Div(a, b *Expr) *Expr {
	return newNode(opDiv, a.value/b.value, a, b)
}

// Neg returns -a.
func Neg(a *Expr) *Expr {
	return newNode(opNeg, -a.value, a)
}

// Exp returns e^a.
func Exp(a *Expr) *Expr {
	return newNode(opExp, math.Exp(a.value), a)
}

// Log returns the natural logarithm of a.
func Log(a *Expr) *Expr {
	return newNode(opLog, math.Log(a.value), a)
}

// Sqrt returns the square root of a.
func Sqrt(a *Expr) *Expr {
	return newNode(opSqrt, math.Sqrt(a.value), a)
}

// Tanh returns the hyperbolic tangent of a.
func Tanh(a *Expr) *Expr {
	return newNode(opTanh, math.Tanh(a.value), a)
}

// Sigmoid returns 1/(1+e^-a).
func Sigmoid(a *Expr) *Expr {
	return newNode(opSigmoid, 1/(1+math.Exp(-a.value)), a)
}

// Relu returns max(a, 0). The gradient at exactly 0 is taken as 0.
func Relu(a *Expr) *Expr {
	return newNode(opRelu, math.Max(a.value, 0), a)
}

// Pow returns a raised to the given constant exponent.
func Pow(a *Expr, exponent float64) *Expr {
	n := newNode(opPow, math.Pow(a.value, exponent), a)
	n.exponent = exponent
	return n
}

// Square returns a*a.
func Square(a *Expr) *Expr {
	return Mul(a, a)
}

// AddScalar returns a+scalar.
func AddScalar(a *Expr, scalar float64) *Expr {
	return Add(a, Const(scalar))
}

// MulScalar returns a*scalar.
func MulScalar(a *Expr, scalar float64) *Expr {
	return Mul(a, Const(scalar))
}

// Sum adds up a non-empty slice of expressions.
func Sum(xs []*Expr) *Expr {
	if len(xs) == 0 {
		return Const(0)
	}
	total := xs[0]
	for _, x := range xs[1:] {
		total = Add(total, x)
	}
	return total
}

// Mean returns the arithmetic mean of a non-empty slice of expressions.
func Mean(xs []*Expr) *Expr {
	return Div(Sum(xs), Const(float64(len(xs))))
}

// Dot returns the inner product of two equal-length expression vectors.
func Dot(a, b []*Expr) *Expr {
	if len(a) != len(b) {
		Panicf("expr.Dot: vectors have different lengths, %d and %d", len(a), len(b))
	}
	terms := make([]*Expr, len(a))
	for ii := range a {
		terms[ii] = Mul(a[ii], b[ii])
	}
	return Sum(terms)
}
