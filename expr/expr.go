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

// Package expr implements the analytic engine: immutable scalar expressions
// over float64 values and reverse-mode automatic differentiation over them.
//
// Expressions form a DAG. Each node carries its numeric value, computed
// eagerly at construction, so evaluating an expression is free. An
// expression built only from constants (see Const) stays constant through
// every operation -- constant subtrees are folded on the fly -- and can be
// projected back to a plain float64 with Constant or MustConstant.
//
// Expressions that depend on parameters only exist inside a Gradient call:
// Gradient materializes a symbolic parameter pack, hands it to a
// user-provided scalar function, and runs one reverse (VJP) sweep over the
// resulting DAG to obtain d(scalar)/d(parameter) for every parameter. See
// gradient.go.
package expr

import (
	"fmt"

	. "github.com/gomlx/exceptions"
	"github.com/pkg/errors"
)

type opType int

const (
	opConst opType = iota
	opVar
	opAdd
	opSub
	opMul
	opDiv
	opNeg
	opExp
	opLog
	opSqrt
	opTanh
	opSigmoid
	opRelu
	opPow
)

var opNames = [...]string{
	opConst: "Const", opVar: "Var", opAdd: "Add", opSub: "Sub", opMul: "Mul",
	opDiv: "Div", opNeg: "Neg", opExp: "Exp", opLog: "Log", opSqrt: "Sqrt",
	opTanh: "Tanh", opSigmoid: "Sigmoid", opRelu: "Relu", opPow: "Pow",
}

// Expr is one node of an immutable scalar expression DAG. Create leaves
// with Const; create everything else with the operations in ops.go.
// A nil *Expr is never valid.
type Expr struct {
	op     opType
	inputs []*Expr

	// value is the numeric value of this node at the parameter values it
	// was built with. Computed eagerly at construction.
	value float64

	// isConst marks nodes with no parameter dependency. Only such nodes
	// can be projected back to a float64.
	isConst bool

	// varIdx is the flat parameter index, valid only for opVar nodes.
	varIdx int

	// exponent of an opPow node.
	exponent float64
}

// Const injects a concrete number into the expression domain. The result
// is constant: it can always be projected back with Constant.
func Const(value float64) *Expr {
	return &Expr{op: opConst, value: value, isConst: true}
}

// newVar creates a parameter leaf. Only Gradient creates these.
func newVar(idx int, value float64) *Expr {
	return &Expr{op: opVar, value: value, varIdx: idx}
}

// IsConst reports whether the expression has no parameter dependency.
func (e *Expr) IsConst() bool { return e.isConst }

// Constant projects the expression back to a concrete number. It fails if
// the expression depends on symbolic parameters, which can only happen when
// an encoder or decoder leaks an expression out of a Gradient call.
func (e *Expr) Constant() (float64, error) {
	if !e.isConst {
		return 0, errors.Errorf("expression %s is not constant, it depends on symbolic parameters", e)
	}
	return e.value, nil
}

// MustConstant is like Constant but panics instead of returning an error.
// Projecting a non-constant expression is a programming error.
func (e *Expr) MustConstant() float64 {
	if !e.isConst {
		Panicf("expression %s is not constant, it depends on symbolic parameters", e)
	}
	return e.value
}

// String returns a short description of the node, for error messages.
func (e *Expr) String() string {
	switch e.op {
	case opConst:
		return fmt.Sprintf("Const(%g)", e.value)
	case opVar:
		return fmt.Sprintf("Var(#%d=%g)", e.varIdx, e.value)
	default:
		return fmt.Sprintf("%s(=%g)", opNames[e.op], e.value)
	}
}
