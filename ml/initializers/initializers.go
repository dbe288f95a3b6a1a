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

// Package initializers provides weight initializers for components. They
// all build component.Initializer values: capabilities that draw a fresh
// pack of a fixed shape from an explicitly threaded random source.
package initializers

import (
	. "github.com/gomlx/exceptions"
	"golang.org/x/exp/maps"

	"github.com/gomlx/learnfn/ml/component"
	"github.com/gomlx/learnfn/types/packs"
	"github.com/gomlx/learnfn/types/xrand"
)

// ConstantFn returns an initializer that fills a pack of the given shape
// with value. It consumes no entropy.
func ConstantFn(shape packs.Shape, value float64) component.Initializer {
	return func(state xrand.State) (packs.Pack[float64], xrand.State) {
		return packs.NewFilled(shape, value), state
	}
}

// Zero returns an initializer that fills a pack of the given shape with
// zeros.
func Zero(shape packs.Shape) component.Initializer {
	return ConstantFn(shape, 0)
}

// NormalFn returns an initializer drawing each value independently from a
// normal distribution with mean 0 and the given standard deviation.
func NormalFn(shape packs.Shape, stddev float64) component.Initializer {
	return func(state xrand.State) (packs.Pack[float64], xrand.State) {
		values := make([]float64, shape.Count())
		for ii := range values {
			values[ii], state = state.NormFloat64()
			values[ii] *= stddev
		}
		return packs.New(shape, values), state
	}
}

// UniformFn returns an initializer drawing each value independently from
// the uniform distribution over the half-open interval [min, max).
func UniformFn(shape packs.Shape, min, max float64) component.Initializer {
	if max < min {
		Panicf("initializers.UniformFn: max (%g) < min (%g)", max, min)
	}
	return func(state xrand.State) (packs.Pack[float64], xrand.State) {
		values := make([]float64, shape.Count())
		for ii := range values {
			values[ii], state = state.Float64()
			values[ii] = min + values[ii]*(max-min)
		}
		return packs.New(shape, values), state
	}
}

// KnownInitializers maps initializer names to default constructors over a
// shape, an easy quick start point. One usually tunes stddev/ranges for
// slightly better results.
var KnownInitializers = map[string]func(shape packs.Shape) component.Initializer{
	"zero":    Zero,
	"normal":  func(shape packs.Shape) component.Initializer { return NormalFn(shape, 0.1) },
	"uniform": func(shape packs.Shape) component.Initializer { return UniformFn(shape, -0.1, 0.1) },
}

// ByName returns an initializer for the shape given the name, or panics if
// one does not exist. It uses KnownInitializers -- in case one wants to
// better handle invalid values.
func ByName(name string, shape packs.Shape) component.Initializer {
	builder, found := KnownInitializers[name]
	if !found {
		Panicf("Unknown initializer %q, valid values are %v.", name, maps.Keys(KnownInitializers))
	}
	return builder(shape)
}
