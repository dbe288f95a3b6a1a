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

// Package losses provides loss functions to plug into models. They build
// scalar loss expressions from a model's (encoded, possibly symbolic)
// output and the sample's expected value.
package losses

import (
	. "github.com/gomlx/exceptions"

	"github.com/gomlx/learnfn/expr"
)

// SquaredError returns (output - target)^2 for a scalar output.
func SquaredError(output *expr.Expr, target float64) *expr.Expr {
	return expr.Square(expr.AddScalar(output, -target))
}

// SquaredDifference returns (a - b)^2 for two scalar expressions.
func SquaredDifference(a, b *expr.Expr) *expr.Expr {
	return expr.Square(expr.Sub(a, b))
}

// MeanSquaredError returns the mean of (output[i] - target[i])^2 over a
// vector output. Output and target must have the same length.
func MeanSquaredError(output []*expr.Expr, target []float64) *expr.Expr {
	if len(output) != len(target) {
		Panicf("losses.MeanSquaredError: output has %d values, target has %d", len(output), len(target))
	}
	if len(output) == 0 {
		Panicf("losses.MeanSquaredError: empty output")
	}
	terms := make([]*expr.Expr, len(output))
	for ii := range terms {
		terms[ii] = SquaredError(output[ii], target[ii])
	}
	return expr.Mean(terms)
}
