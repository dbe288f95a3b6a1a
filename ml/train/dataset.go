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

package train

import (
	"io"

	. "github.com/gomlx/exceptions"
)

// Dataset yields batches of samples for the training loop. Batches are
// finite, re-traversable slices: the loop (and the model) only read them.
type Dataset[S any] interface {
	// Yield returns the next batch. It returns io.EOF when the epoch is
	// exhausted; Reset starts a new epoch.
	Yield() ([]S, error)

	// Reset restarts the dataset from the beginning.
	Reset()
}

// inMemory is a Dataset over a slice of samples, yielding fixed-size
// batches in order.
type inMemory[S any] struct {
	samples   []S
	batchSize int
	pos       int
}

// InMemory creates a Dataset over the given samples yielding batches of
// batchSize. The last batch of an epoch may be smaller. The samples slice
// is not copied and must not be mutated while training.
func InMemory[S any](samples []S, batchSize int) Dataset[S] {
	if len(samples) == 0 {
		Panicf("train.InMemory: no samples")
	}
	if batchSize <= 0 {
		Panicf("train.InMemory: batchSize must be positive, got %d", batchSize)
	}
	return &inMemory[S]{samples: samples, batchSize: batchSize}
}

// Yield implements Dataset.
func (ds *inMemory[S]) Yield() ([]S, error) {
	if ds.pos >= len(ds.samples) {
		return nil, io.EOF
	}
	end := min(ds.pos+ds.batchSize, len(ds.samples))
	batch := ds.samples[ds.pos:end]
	ds.pos = end
	return batch, nil
}

// Reset implements Dataset.
func (ds *inMemory[S]) Reset() { ds.pos = 0 }
