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
	"repsub/internal/telemetry"
	"repsub/pkg/bucket"
	"repsub/pkg/candidate"
	"repsub/pkg/subset"
)

// ThreeSieve maintains a single active bucket instead of SieveStreaming's
// full ladder, trading memory for a coarser approximation. It starts at the
// top (highest, strictest) threshold and relaxes toward lower thresholds as
// consecutive misses accumulate.
type ThreeSieve struct {
	k              int
	epsilon        float64
	transferT      int
	deltaZero      float64
	deltaZeroKnown bool

	topIndex    int
	activeStep  int // steps taken down from topIndex; bucket index = topIndex - activeStep
	missStreak  int
	active      *bucket.ThresholdBucket
}

// NewThreeSieve builds a ThreeSieve titrator for capacity k, bucket spacing
// epsilon, seeded Δ₀, and miss-threshold transferT before advancing to the
// next (lower) bucket.
func NewThreeSieve(k int, epsilon, deltaZero float64, deltaZeroKnown bool, transferT int) *ThreeSieve {
	t := &ThreeSieve{
		k:              k,
		epsilon:        epsilon,
		transferT:      transferT,
		deltaZero:      deltaZero,
		deltaZeroKnown: deltaZeroKnown,
	}
	t.resetLadder(deltaZero)
	return t
}

func (t *ThreeSieve) resetLadder(deltaZero float64) {
	b := numberOfBuckets(t.k, t.epsilon, t.deltaZeroKnown)
	t.topIndex = b - 1
	t.activeStep = 0
	t.missStreak = 0
	t.deltaZero = deltaZero
	threshold := thresholdForBucket(t.topIndex, t.epsilon, deltaZero)
	t.active = bucket.New(threshold, t.k)
}

func (t *ThreeSieve) advance() {
	if t.activeStep >= t.topIndex {
		return
	}
	t.activeStep++
	newThreshold := thresholdForBucket(t.topIndex-t.activeStep, t.epsilon, t.deltaZero)
	t.active = t.active.TransferContents(newThreshold)
	t.missStreak = 0
}

func (t *ThreeSieve) processSeed(seed candidate.Seed) {
	delta := deltaFromScore(selfDiag(seed.Row))
	if delta > t.deltaZero {
		t.resetLadder(delta)
		telemetry.ObserveBucketReorganization()
	}

	if t.active.AttemptInsert(seed.GlobalIndex, seed.Row) {
		t.missStreak = 0
		return
	}
	t.missStreak++
	if t.missStreak >= t.transferT {
		t.advance()
	}
}

// ProcessQueue implements Titrator.
func (t *ThreeSieve) ProcessQueue(q *candidate.Queue) bool {
	for {
		if t.IsFull() {
			return false
		}
		seed, ok := q.Pop()
		if !ok {
			break
		}
		t.processSeed(seed)
	}
	return !t.IsFull()
}

// IsFull implements Titrator.
func (t *ThreeSieve) IsFull() bool {
	return t.deltaZeroKnown && t.activeStep >= t.topIndex && t.active.IsFull()
}

// Finalize implements Titrator.
func (t *ThreeSieve) Finalize() subset.Subset {
	if t.active.Utility() <= 0 {
		return subset.NewMutable()
	}
	return t.active.Solution()
}
