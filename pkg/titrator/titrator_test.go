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
	"testing"

	"repsub/pkg/candidate"
	"repsub/pkg/row"
)

func rowWithNorm(norm float32) row.Row {
	return row.NewDenseRow([]float32{norm, 0, 0})
}

func TestLazyInitTitratorDiscoversDeltaZero(t *testing.T) {
	q := candidate.New()
	q.Push(candidate.Seed{GlobalIndex: 0, Row: rowWithNorm(1)})
	q.Push(candidate.Seed{GlobalIndex: 1, Row: rowWithNorm(100)})
	q.Push(candidate.Seed{GlobalIndex: 2, Row: rowWithNorm(10)})
	q.Close()

	lazy := NewLazyInit(func(deltaZero float64) Titrator {
		return NewSieveStreaming(3, 0.1, deltaZero, true)
	})

	lazy.ProcessQueue(q)
	if q.Size() != 3 {
		t.Fatalf("after first ProcessQueue pass, Size() = %d, want 3 (re-enqueued)", q.Size())
	}

	lazy.ProcessQueue(q)
	result := lazy.Finalize()
	if result.Size() == 0 {
		t.Fatalf("Finalize() produced an empty subset, want a non-empty bucket")
	}
}

func TestSieveStreamingNearZeroThresholdFloorAdmitsFirstRow(t *testing.T) {
	q := candidate.New()
	q.Push(candidate.Seed{GlobalIndex: 5, Row: row.NewDenseRow([]float32{1, 1, 0})})
	q.Close()

	// Starting from a vanishingly small Δ₀, the seed's own δ = log 3
	// revises Δ₀ before the insert, so bucket 0's threshold becomes
	// (1.1)^1 = 1.1; the seed's marginal log 3 still clears that bucket's
	// pass predicate (1.1/2)/3.
	s := NewSieveStreaming(3, 0.1, 1e-9, true)
	s.ProcessQueue(q)
	result := s.Finalize()
	if result.Size() == 0 {
		t.Fatalf("Finalize() empty, want the single seed admitted by the lowest-threshold bucket")
	}
}

func TestTitratorMonotonicityMoreSeedsNeverDecreasesBestScore(t *testing.T) {
	s := NewSieveStreaming(4, 0.2, 1, true)

	q := candidate.New()
	q.Push(candidate.Seed{GlobalIndex: 0, Row: row.NewDenseRow([]float32{4, 17, 20, 1, 4, 21})})
	s.ProcessQueue(q)
	scoreAfterOne := s.Finalize().Score()

	q.Push(candidate.Seed{GlobalIndex: 1, Row: row.NewDenseRow([]float32{5, 7, 31, 45, 3, 24})})
	q.Push(candidate.Seed{GlobalIndex: 2, Row: row.NewDenseRow([]float32{2.632, 5.126, 73, 15, 15, 4})})
	s.ProcessQueue(q)
	scoreAfterThree := s.Finalize().Score()

	if scoreAfterThree < scoreAfterOne {
		t.Fatalf("best score decreased after adding seeds: %v -> %v", scoreAfterOne, scoreAfterThree)
	}
}

func TestThreeSieveAdvancesBucketOnConsecutiveMisses(t *testing.T) {
	ts := NewThreeSieve(10, 0.1, 1, true, 1)

	q := candidate.New()
	q.Push(candidate.Seed{GlobalIndex: 0, Row: row.NewDenseRow([]float32{0.0001, 0, 0})})
	ts.ProcessQueue(q)

	if ts.activeStep == 0 {
		t.Fatalf("expected a single miss against the strictest (top) bucket to advance the active step")
	}
	if ts.active.Size() != 0 {
		t.Fatalf("active bucket Size() = %d, want 0 after a rejected insert", ts.active.Size())
	}
}
