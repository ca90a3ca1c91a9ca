// Copyright 2025 Esteban Alvarez. All Rights Reserved.
//
// Created: October 2025
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package titrator

import (
	"math"

	"repsub/pkg/candidate"
	"repsub/pkg/subset"
)

// LazyInit defers construction of a delegate Titrator until Δ₀ can be
// discovered from the stream itself: it drains the queue once, computes
// Δ₀ as the max per-seed score, re-enqueues everything, then builds the
// delegate with a now-known, fixed Δ₀.
type LazyInit struct {
	newDelegate func(deltaZero float64) Titrator
	delegate    Titrator
}

// NewLazyInit builds a wrapper that hands its discovered Δ₀ to factory to
// produce the real titrator (typically NewSieveStreaming or NewThreeSieve
// partially applied over everything but deltaZero).
func NewLazyInit(factory func(deltaZero float64) Titrator) *LazyInit {
	return &LazyInit{newDelegate: factory}
}

// ProcessQueue implements Titrator.
func (l *LazyInit) ProcessQueue(q *candidate.Queue) bool {
	if l.delegate == nil {
		drained := q.DrainInto()
		if len(drained) == 0 {
			return true
		}
		maxDelta := math.Inf(-1)
		for _, seed := range drained {
			if d := deltaFromScore(selfDiag(seed.Row)); d > maxDelta {
				maxDelta = d
			}
		}
		l.delegate = l.newDelegate(maxDelta)
		q.RefillFrom(drained)
		return true
	}
	return l.delegate.ProcessQueue(q)
}

// Finalize implements Titrator.
func (l *LazyInit) Finalize() subset.Subset {
	if l.delegate == nil {
		return subset.NewMutable()
	}
	return l.delegate.Finalize()
}

// IsFull implements Titrator.
func (l *LazyInit) IsFull() bool {
	if l.delegate == nil {
		return false
	}
	return l.delegate.IsFull()
}
