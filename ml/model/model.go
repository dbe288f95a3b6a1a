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

// Package model turns a component into an end-to-end trainable predictor.
//
// A Model bundles a component over encoded input/output types with three
// callbacks: a sample encoder (raw sample to encoded input plus a
// per-sample loss function), an input encoder and an output decoder. With
// those it can predict on raw inputs, measure the mean loss over a batch,
// and take one gradient-descent step.
//
// Models are immutable snapshots. Descent and Resample return new models,
// the receiver is never changed, so a model value can be used concurrently
// for prediction and evaluation any number of times. A batch is any finite
// []S slice; it is only read, and it is walked once for encoding per call.
package model

import (
	. "github.com/gomlx/exceptions"
	"gonum.org/v1/gonum/stat"

	"github.com/gomlx/learnfn/expr"
	"github.com/gomlx/learnfn/ml/component"
	"github.com/gomlx/learnfn/ml/para"
	"github.com/gomlx/learnfn/types/packs"
	"github.com/gomlx/learnfn/types/xrand"
)

// LossFn maps a model output (in encoded form) to a scalar loss
// expression. Each sample contributes its own LossFn, typically closing
// over the sample's expected output.
type LossFn[EO any] func(output EO) *expr.Expr

// SampleEncoder maps one raw sample to the encoded input to feed the
// component and the loss function to apply to the component's output.
type SampleEncoder[S, EI, EO any] func(sample S) (input EI, loss LossFn[EO])

// Model is a trainable predictor: a component over encoded types EI->EO
// plus the glue mapping raw samples S, inputs I and outputs O in and out
// of the encoded domain.
type Model[S, I, O, EI, EO any] struct {
	comp         component.Component[EI, EO]
	encodeSample SampleEncoder[S, EI, EO]
	encodeInput  func(I) EI
	decodeOutput func(EO) O
}

// New creates a Model. All three callbacks are required.
func New[S, I, O, EI, EO any](
	comp component.Component[EI, EO],
	encodeSample SampleEncoder[S, EI, EO],
	encodeInput func(I) EI,
	decodeOutput func(EO) O) Model[S, I, O, EI, EO] {
	if encodeSample == nil || encodeInput == nil || decodeOutput == nil {
		Panicf("model.New: encodeSample, encodeInput and decodeOutput are all required")
	}
	return Model[S, I, O, EI, EO]{
		comp:         comp,
		encodeSample: encodeSample,
		encodeInput:  encodeInput,
		decodeOutput: decodeOutput,
	}
}

// Example is the sample type of standard models: an input paired with its
// expected output.
type Example[I, O any] struct {
	Input  I
	Target O
}

// NewStandard creates a Model whose samples are (input, target) Examples,
// deriving each sample's loss from its target through the given loss
// function.
func NewStandard[I, O, EI, EO any](
	comp component.Component[EI, EO],
	encodeInput func(I) EI,
	decodeOutput func(EO) O,
	loss func(output EO, target O) *expr.Expr) Model[Example[I, O], I, O, EI, EO] {
	if loss == nil {
		Panicf("model.NewStandard: loss is required")
	}
	encodeSample := func(sample Example[I, O]) (EI, LossFn[EO]) {
		return encodeInput(sample.Input), func(output EO) *expr.Expr {
			return loss(output, sample.Target)
		}
	}
	return New[Example[I, O]](comp, encodeSample, encodeInput, decodeOutput)
}

// Component returns the model's current component.
func (m Model[S, I, O, EI, EO]) Component() component.Component[EI, EO] { return m.comp }

// NumParams returns the number of trainable parameters.
func (m Model[S, I, O, EI, EO]) NumParams() int { return m.comp.NumParams() }

// Weights returns the current weights as a flat ordered list.
func (m Model[S, I, O, EI, EO]) Weights() []float64 { return m.comp.Weights() }

// WithWeights returns a new Model with the given flat weights. It panics
// on a length mismatch.
func (m Model[S, I, O, EI, EO]) WithWeights(values []float64) Model[S, I, O, EI, EO] {
	next := m
	next.comp = m.comp.WithWeights(values)
	return next
}

// Predict encodes input, activates the component at the current weights
// and decodes the result. Pure, no side effects.
func (m Model[S, I, O, EI, EO]) Predict(input I) O {
	return m.decodeOutput(m.comp.Activate(m.encodeInput(input)))
}

// encodeBatch runs the sample encoder over a batch. The batch must not be
// empty: the mean loss of nothing is undefined.
func (m Model[S, I, O, EI, EO]) encodeBatch(batch []S) ([]EI, []LossFn[EO]) {
	if len(batch) == 0 {
		Panicf("model: batch is empty")
	}
	inputs := make([]EI, len(batch))
	lossFns := make([]LossFn[EO], len(batch))
	for ii, sample := range batch {
		inputs[ii], lossFns[ii] = m.encodeSample(sample)
	}
	return inputs, lossFns
}

// batchOutputs runs the component's function over all encoded inputs with
// one shared parameter pack.
func (m Model[S, I, O, EI, EO]) batchOutputs(inputs []EI, params packs.Pack[*expr.Expr]) []EO {
	return para.Convolve(m.comp.Function())(inputs, params)
}

// MeanLoss returns the arithmetic mean of the per-sample losses over the
// batch, at the current weights. It panics on an empty batch.
func (m Model[S, I, O, EI, EO]) MeanLoss(batch []S) float64 {
	inputs, lossFns := m.encodeBatch(batch)
	outputs := m.batchOutputs(inputs, packs.Convert(m.comp.WeightsPack(), expr.Const))
	losses := make([]float64, len(batch))
	for ii := range losses {
		losses[ii] = lossFns[ii](outputs[ii]).MustConstant()
	}
	return stat.Mean(losses, nil)
}

// Descent performs one gradient-descent step over the batch with the
// update rule w' = w - rate*dw.
//
// It returns the mean batch loss at the current (pre-step) weights, and a
// new Model with the updated weights; the receiver is unchanged. Descent
// is pure and deterministic: identical model, rate and batch always yield
// the identical (loss, model) result.
func (m Model[S, I, O, EI, EO]) Descent(rate float64, batch []S) (lossBefore float64, next Model[S, I, O, EI, EO]) {
	inputs, lossFns := m.encodeBatch(batch)
	symbolicLoss := func(params packs.Pack[*expr.Expr]) *expr.Expr {
		outputs := m.batchOutputs(inputs, params)
		losses := make([]*expr.Expr, len(outputs))
		for ii := range losses {
			losses[ii] = lossFns[ii](outputs[ii])
		}
		return expr.Mean(losses)
	}
	lossBefore, updated := expr.Gradient(
		func(w, dw float64) float64 { return w - rate*dw },
		symbolicLoss, m.comp.WeightsPack())
	next = m
	next.comp = m.comp.WithWeightsPack(updated)
	return
}

// Resample returns a new Model with weights freshly drawn from the
// component's initializer, keeping the structure and encoders. The old
// weights are discarded. Entropy is consumed from state, whose successor
// is returned.
func (m Model[S, I, O, EI, EO]) Resample(state xrand.State) (Model[S, I, O, EI, EO], xrand.State) {
	comp, next := m.comp.Reinitialize(state)
	resampled := m
	resampled.comp = comp
	return resampled, next
}
