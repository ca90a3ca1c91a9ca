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

// SieveStreaming maintains a ladder of ThresholdBuckets spanning the
// geometric threshold family for the current Δ₀, inserting every drained
// seed into all of them and reporting the best bucket at finalize.
type SieveStreaming struct {
	k              int
	epsilon        float64
	deltaZero      float64
	deltaZeroKnown bool
	buckets        []*bucket.ThresholdBucket
}

// NewSieveStreaming builds a titrator for capacity k with bucket spacing
// epsilon, seeded with deltaZero. deltaZeroKnown controls the bucket-ladder
// width (B = ceil(log_{1+e} k)+1 vs ceil(log_{1+e} 2k)+1).
func NewSieveStreaming(k int, epsilon, deltaZero float64, deltaZeroKnown bool) *SieveStreaming {
	s := &SieveStreaming{k: k, epsilon: epsilon, deltaZero: deltaZero, deltaZeroKnown: deltaZeroKnown}
	s.rebuildLadder(deltaZero)
	return s
}

func (s *SieveStreaming) rebuildLadder(deltaZero float64) {
	b := numberOfBuckets(s.k, s.epsilon, s.deltaZeroKnown)
	next := make([]*bucket.ThresholdBucket, b)
	for i := 0; i < b; i++ {
		threshold := thresholdForBucket(i, s.epsilon, deltaZero)
		next[i] = bucket.New(threshold, s.k)
		for _, old := range s.buckets {
			if old.Threshold() == threshold {
				next[i] = old
			}
		}
	}
	s.buckets = next
	s.deltaZero = deltaZero
}

// reviseDeltaZero updates Δ₀ and reorganizes the ladder iff delta exceeds
// the titrator's current estimate: drop buckets whose τ falls below the
// new minimum, add new buckets at the top end. A bucket whose τ is still
// on the new ladder is kept as it is, contents included.
func (s *SieveStreaming) reviseDeltaZero(delta float64) {
	if delta <= s.deltaZero {
		return
	}
	s.rebuildLadder(delta)
	telemetry.ObserveBucketReorganization()
}

func (s *SieveStreaming) processSeed(seed candidate.Seed) {
	delta := deltaFromScore(selfDiag(seed.Row))
	s.reviseDeltaZero(delta)
	for _, b := range s.buckets {
		b.AttemptInsert(seed.GlobalIndex, seed.Row)
	}
}

// ProcessQueue implements Titrator.
func (s *SieveStreaming) ProcessQueue(q *candidate.Queue) bool {
	for {
		if s.IsFull() {
			return false
		}
		seed, ok := q.Pop()
		if !ok {
			break
		}
		s.processSeed(seed)
	}
	return !s.IsFull()
}

// IsFull implements Titrator.
func (s *SieveStreaming) IsFull() bool {
	if !s.deltaZeroKnown {
		return false
	}
	for _, b := range s.buckets {
		if !b.IsFull() {
			return false
		}
	}
	return true
}

// Finalize implements Titrator, returning the highest-scoring bucket, or
// an empty subset if no bucket ever exceeded score 0.
func (s *SieveStreaming) Finalize() subset.Subset {
	var best *bucket.ThresholdBucket
	for _, b := range s.buckets {
		if b.Utility() > 0 && (best == nil || b.Utility() > best.Utility()) {
			best = b
		}
	}
	if best == nil {
		return subset.NewMutable()
	}
	return best.Solution()
}
