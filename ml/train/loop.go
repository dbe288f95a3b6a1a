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

// Package train runs gradient-descent training loops over models.
//
// The Loop itself doesn't do much: it repeatedly asks the dataset for a
// batch and the model for one descent step, keeping the newest model
// snapshot. One attaches functionality to it through hooks -- progress
// display (see the commandline sub-package), early stopping, custom
// logging -- which makes it simple and flexible for arbitrary tools.
package train

import (
	"io"
	"math"
	"time"

	"github.com/pkg/errors"
	xslices "golang.org/x/exp/slices"
	"k8s.io/klog/v2"
)

// Trainable is anything that can take one gradient-descent step over a
// batch, returning the loss before the step and its own updated successor.
// model.Model implements it.
type Trainable[M, S any] interface {
	Descent(rate float64, batch []S) (lossBefore float64, next M)
}

// OnStartFn is the type of OnStart hooks.
type OnStartFn[M Trainable[M, S], S any] func(loop *Loop[M, S]) error

// OnStepFn is the type of OnStep hooks. loss is the batch loss before the
// step just taken.
type OnStepFn[M Trainable[M, S], S any] func(loop *Loop[M, S], loss float64) error

// OnEndFn is the type of OnEnd hooks.
type OnEndFn[M Trainable[M, S], S any] func(loop *Loop[M, S], loss float64) error

type hookWithName[F any] struct {
	name string
	fn   F
}

// Loop runs a training loop: one Descent step per batch, invoking the
// registered hooks around each step.
//
// The public attributes are meant for reading, by hooks and the owner;
// changing them mid-run leaves behavior undefined.
type Loop[M Trainable[M, S], S any] struct {
	// Model is the latest snapshot, replaced after every step.
	Model M

	// LearningRate applied at every step.
	LearningRate float64

	// LoopStep currently being executed, starting at 0.
	LoopStep int

	// StartStep is the value of LoopStep at the start of the current run.
	// Running the same loop more than once resumes from the last step.
	StartStep int

	// EndStep is one-past the last step of the current run, or -1 when
	// running to the end of the dataset (RunEpochs).
	EndStep int

	// Epoch is the current epoch, counted across runs.
	Epoch int

	// LastLoss is the most recent batch loss (before its step).
	LastLoss float64

	// TrainStepDurations collected during training, one per step.
	TrainStepDurations []time.Duration

	ds      Dataset[S]
	onStart []hookWithName[OnStartFn[M, S]]
	onStep  []hookWithName[OnStepFn[M, S]]
	onEnd   []hookWithName[OnEndFn[M, S]]
}

// NewLoop creates a training loop for the model over the dataset, stepping
// at the given learning rate.
func NewLoop[M Trainable[M, S], S any](model M, ds Dataset[S], learningRate float64) *Loop[M, S] {
	return &Loop[M, S]{
		Model:        model,
		LearningRate: learningRate,
		ds:           ds,
		EndStep:      -1,
	}
}

// OnStart registers a named hook called once before a run starts. Hooks
// run in registration order.
func (loop *Loop[M, S]) OnStart(name string, fn OnStartFn[M, S]) {
	loop.onStart = append(loop.onStart, hookWithName[OnStartFn[M, S]]{name: name, fn: fn})
}

// OnStep registers a named hook called after every descent step.
func (loop *Loop[M, S]) OnStep(name string, fn OnStepFn[M, S]) {
	loop.onStep = append(loop.onStep, hookWithName[OnStepFn[M, S]]{name: name, fn: fn})
}

// OnEnd registers a named hook called once when a run finishes
// successfully.
func (loop *Loop[M, S]) OnEnd(name string, fn OnEndFn[M, S]) {
	loop.onEnd = append(loop.onEnd, hookWithName[OnEndFn[M, S]]{name: name, fn: fn})
}

func (loop *Loop[M, S]) start() error {
	for _, hook := range loop.onStart {
		if err := hook.fn(loop); err != nil {
			return errors.WithMessagef(err, "OnStart(hook %q)", hook.name)
		}
	}
	return nil
}

func (loop *Loop[M, S]) end() error {
	for _, hook := range loop.onEnd {
		if err := hook.fn(loop, loop.LastLoss); err != nil {
			return errors.WithMessagef(err, "OnEnd(hook %q)", hook.name)
		}
	}
	return nil
}

// step takes one descent step on the given batch.
func (loop *Loop[M, S]) step(batch []S) error {
	startTime := time.Now()
	loss, next := loop.Model.Descent(loop.LearningRate, batch)
	loop.TrainStepDurations = append(loop.TrainStepDurations, time.Since(startTime))

	if math.IsNaN(loss) {
		return errors.Errorf("batch loss is NaN at step %d, training interrupted", loop.LoopStep)
	}
	if math.IsInf(loss, 0) {
		return errors.Errorf("batch loss is infinity (%f) at step %d, training interrupted", loss, loop.LoopStep)
	}

	loop.Model = next
	loop.LastLoss = loss
	klog.V(2).Infof("train: step %d, batch size %d, loss %g", loop.LoopStep, len(batch), loss)

	for _, hook := range loop.onStep {
		if err := hook.fn(loop, loss); err != nil {
			return errors.WithMessagef(err, "OnStep(hook %q)", hook.name)
		}
	}
	loop.LoopStep++
	return nil
}

// yield returns the next batch, starting a new epoch when the dataset is
// exhausted.
func (loop *Loop[M, S]) yield() ([]S, error) {
	batch, err := loop.ds.Yield()
	if err == io.EOF {
		loop.Epoch++
		loop.ds.Reset()
		batch, err = loop.ds.Yield()
		if err == io.EOF {
			return nil, errors.Errorf("dataset yields no batches even after Reset")
		}
	}
	if err != nil {
		return nil, errors.WithMessage(err, "dataset failed to yield a batch")
	}
	return batch, nil
}

// RunSteps trains for numSteps descent steps, cycling through the dataset
// as many times as needed, and returns the final model. On error the
// latest good model is still available in loop.Model.
func (loop *Loop[M, S]) RunSteps(numSteps int) (M, error) {
	loop.StartStep = loop.LoopStep
	loop.EndStep = loop.LoopStep + numSteps
	if err := loop.start(); err != nil {
		return loop.Model, err
	}
	for loop.LoopStep < loop.EndStep {
		batch, err := loop.yield()
		if err != nil {
			return loop.Model, err
		}
		if err := loop.step(batch); err != nil {
			return loop.Model, err
		}
	}
	return loop.Model, loop.end()
}

// RunEpochs trains for numEpochs full passes over the dataset and returns
// the final model.
func (loop *Loop[M, S]) RunEpochs(numEpochs int) (M, error) {
	loop.StartStep = loop.LoopStep
	loop.EndStep = -1
	if err := loop.start(); err != nil {
		return loop.Model, err
	}
	loop.ds.Reset()
	for epoch := 0; epoch < numEpochs; epoch++ {
		for {
			batch, err := loop.ds.Yield()
			if err == io.EOF {
				break
			}
			if err != nil {
				return loop.Model, errors.WithMessage(err, "dataset failed to yield a batch")
			}
			if err := loop.step(batch); err != nil {
				return loop.Model, err
			}
		}
		loop.Epoch++
		loop.ds.Reset()
	}
	return loop.Model, loop.end()
}

// MedianTrainStepDuration returns the median duration of the steps taken
// so far, or zero if none were.
func (loop *Loop[M, S]) MedianTrainStepDuration() time.Duration {
	if len(loop.TrainStepDurations) == 0 {
		return 0
	}
	durations := append([]time.Duration(nil), loop.TrainStepDurations...)
	xslices.Sort(durations)
	return durations[len(durations)/2]
}
