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

// This file implements reverse-mode automatic differentiation over the
// expression DAG, accumulating VJPs (vector-Jacobian products, here plain
// scalars) from the root back to the parameter leaves.
//
// Conventions:
//
// * root node: the scalar whose gradient we want, typically a batch loss.
// * adjoint / accumulated VJP: d(root)/d(node output), the sum of the
//   contributions pushed down by all of the node's consumers.
// * Constant subtrees carry no parameter dependency, so traversal prunes
//   them: adjoints are only propagated through non-constant nodes.

import (
	"math"

	. "github.com/gomlx/exceptions"

	"github.com/gomlx/learnfn/types/packs"
)

// UpdateRule maps a parameter value and its gradient to the parameter's new
// value. Plain gradient descent at learning rate lr is:
//
//	func(w, dw float64) float64 { return w - lr*dw }
type UpdateRule func(w, dw float64) float64

// Gradient evaluates fn at the current parameter values and differentiates
// it with respect to every parameter in one reverse sweep.
//
// fn receives a symbolic pack with the same shape as current, whose leaves
// hold the current values; whatever scalar expression it builds from them
// is the function being differentiated. Gradient returns the scalar's value
// at the current parameters, and a new pack where update was applied
// elementwise to (value, gradient) pairs.
//
// Gradient is deterministic and has no side effects: calling it twice with
// the same arguments returns the same results, and current is not modified.
func Gradient(update UpdateRule, fn func(params packs.Pack[*Expr]) *Expr, current packs.Pack[float64]) (value float64, updated packs.Pack[float64]) {
	flat := current.Flat()
	leaves := make([]*Expr, len(flat))
	for ii, w := range flat {
		leaves[ii] = newVar(ii, w)
	}
	symbolic := packs.New(current.Shape(), leaves)

	root := fn(symbolic)
	if root == nil {
		Panicf("expr.Gradient: scalar function returned a nil expression")
	}

	grads := backward(root, len(flat))
	for ii := range flat {
		flat[ii] = update(flat[ii], grads[ii])
	}
	return root.value, current.WithFlat(flat)
}

// backward runs the reverse sweep from root and returns the gradient of
// root with respect to each of the numParams parameter leaves. Parameters
// the root does not depend on get gradient 0.
func backward(root *Expr, numParams int) []float64 {
	grads := make([]float64, numParams)
	if root.isConst {
		// No parameter dependency anywhere.
		return grads
	}

	order := topoSort(root)
	adjoints := make(map[*Expr]float64, len(order))
	adjoints[root] = 1

	// order lists inputs before consumers, so walking it backwards
	// guarantees a node's adjoint is complete before it pushes VJPs to
	// its inputs.
	for ii := len(order) - 1; ii >= 0; ii-- {
		node := order[ii]
		adjoint, ok := adjoints[node]
		if !ok || adjoint == 0 {
			continue
		}
		if node.op == opVar {
			grads[node.varIdx] += adjoint
			continue
		}
		for jj, vjp := range node.inputVJPs(adjoint) {
			in := node.inputs[jj]
			if in.isConst {
				continue
			}
			adjoints[in] += vjp
		}
	}
	return grads
}

// inputVJPs returns the adjoint contribution this node pushes to each of
// its inputs, given its own accumulated adjoint.
func (e *Expr) inputVJPs(adjoint float64) []float64 {
	a := e.inputs[0]
	switch e.op {
	case opAdd:
		return []float64{adjoint, adjoint}
	case opSub:
		return []float64{adjoint, -adjoint}
	case opMul:
		b := e.inputs[1]
		return []float64{adjoint * b.value, adjoint * a.value}
	case opDiv:
		b := e.inputs[1]
		return []float64{adjoint / b.value, -adjoint * a.value / (b.value * b.value)}
	case opNeg:
		return []float64{-adjoint}
	case opExp:
		return []float64{adjoint * e.value}
	case opLog:
		return []float64{adjoint / a.value}
	case opSqrt:
		return []float64{adjoint / (2 * e.value)}
	case opTanh:
		return []float64{adjoint * (1 - e.value*e.value)}
	case opSigmoid:
		return []float64{adjoint * e.value * (1 - e.value)}
	case opRelu:
		if a.value > 0 {
			return []float64{adjoint}
		}
		return []float64{0}
	case opPow:
		return []float64{adjoint * e.exponent * math.Pow(a.value, e.exponent-1)}
	}
	Panicf("expr: no VJP rule for operation %s", opNames[e.op])
	return nil
}

// topoSort returns the non-constant nodes reachable from root with every
// node's inputs listed before the node itself. Iterative so arbitrarily
// deep expression chains don't exhaust the goroutine stack.
func topoSort(root *Expr) []*Expr {
	type frame struct {
		node *Expr
		next int
	}
	var order []*Expr
	visited := map[*Expr]bool{root: true}
	stack := []frame{{node: root}}
	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		if top.next < len(top.node.inputs) {
			in := top.node.inputs[top.next]
			top.next++
			if in.isConst || visited[in] {
				continue
			}
			visited[in] = true
			stack = append(stack, frame{node: in})
			continue
		}
		order = append(order, top.node)
		stack = stack[:len(stack)-1]
	}
	return order
}
