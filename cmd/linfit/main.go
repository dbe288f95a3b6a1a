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

// linfit demo: fits y = slope*x + intercept to noisy synthetic samples with
// a two-parameter composed component, plain gradient descent and a
// command-line progress bar.
package main

import (
	"flag"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/gomlx/exceptions"
	"github.com/janpfeifer/must"
	"k8s.io/klog/v2"

	"github.com/gomlx/learnfn/expr"
	"github.com/gomlx/learnfn/ml/component"
	"github.com/gomlx/learnfn/ml/layers"
	"github.com/gomlx/learnfn/ml/model"
	"github.com/gomlx/learnfn/ml/train"
	"github.com/gomlx/learnfn/ml/train/commandline"
	"github.com/gomlx/learnfn/ml/train/losses"
	"github.com/gomlx/learnfn/types/xrand"
)

var (
	flagSlope      = flag.Float64("slope", 2.0, "True slope of the synthetic data.")
	flagIntercept  = flag.Float64("intercept", -1.0, "True intercept of the synthetic data.")
	flagNoise      = flag.Float64("noise", 0.05, "Stddev of the noise added to the synthetic targets.")
	flagNumSamples = flag.Int("samples", 256, "Number of synthetic samples to generate.")
	flagBatchSize  = flag.Int("batch", 32, "Batch size.")
	flagSteps      = flag.Int("steps", 500, "Number of gradient descent steps.")
	flagRate       = flag.Float64("lr", 0.05, "Learning rate.")
	flagSeed       = flag.Int64("seed", 42, "Random seed for data generation and weight initialization.")
)

// makeSamples generates noisy (x, slope*x+intercept) examples with x drawn
// uniformly from [-1, 1).
func makeSamples(state xrand.State, n int) ([]model.Example[float64, float64], xrand.State) {
	samples := make([]model.Example[float64, float64], n)
	for ii := range samples {
		var x, noise float64
		x, state = state.Float64()
		x = 2*x - 1
		noise, state = state.NormFloat64()
		samples[ii] = model.Example[float64, float64]{
			Input:  x,
			Target: *flagSlope*x + *flagIntercept + noise**flagNoise,
		}
	}
	return samples, state
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	err := exceptions.TryCatch[error](run)
	if err != nil {
		klog.Fatalf("Failed with error: %+v", err)
	}
}

func run() {
	state := xrand.New(*flagSeed)
	samples, state := makeSamples(state, *flagNumSamples)

	// y = w*x + b, weights flat order [w, b].
	affine := component.Compose(layers.Shift(0, 0.1), layers.Scale(0, 0.1))
	m := model.NewStandard(
		affine,
		expr.Const,
		func(output *expr.Expr) float64 { return output.MustConstant() },
		func(output *expr.Expr, target float64) *expr.Expr {
			return losses.SquaredError(output, target)
		})
	m, _ = m.Resample(state)
	fmt.Printf("Model with %s parameters, initial loss %.6g\n",
		humanize.Comma(int64(m.NumParams())), m.MeanLoss(samples))

	loop := train.NewLoop(m, train.InMemory(samples, *flagBatchSize), *flagRate)
	commandline.AttachProgressBar(loop)
	m = must.M1(loop.RunSteps(*flagSteps))

	weights := m.Weights()
	fmt.Printf("Fitted slope=%.4f (true %.4f), intercept=%.4f (true %.4f)\n",
		weights[0], *flagSlope, weights[1], *flagIntercept)
	fmt.Printf("Final loss %.6g, median step time %s\n",
		m.MeanLoss(samples), loop.MedianTrainStepDuration())
}
