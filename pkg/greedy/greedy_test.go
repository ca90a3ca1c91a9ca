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

package greedy

import (
	"math"
	"testing"

	"repsub/pkg/relevance"
	"repsub/pkg/row"
	"repsub/pkg/subset"
)

func tinyDenseStore(t *testing.T) *row.Store {
	t.Helper()
	rows := []row.Row{
		row.NewDenseRow([]float32{4, 17, 20, 1, 4, 21}),
		row.NewDenseRow([]float32{5, 7, 31, 45, 3, 24}),
		row.NewDenseRow([]float32{2.632, 5.126, 73, 15, 15, 4}),
		row.NewDenseRow([]float32{12, 6, 47, 32, 74, 4}),
		row.NewDenseRow([]float32{1, 2, 3, 4, 5, 6}),
		row.NewDenseRow([]float32{6, 31, 54, 3.5, 23, 57}),
	}
	s, err := row.NewFullyLoaded(rows)
	if err != nil {
		t.Fatalf("NewFullyLoaded: %v", err)
	}
	return s
}

func TestAllSelectorsAgreeOnTinyDataset(t *testing.T) {
	store := tinyDenseStore(t)
	const k = 5

	selectors := map[string]Selector{
		"Naive":    Naive{},
		"Lazy":     Lazy{},
		"Fast":     Fast{Epsilon: 0.01},
		"LazyFast": LazyFast{Epsilon: 0.01},
	}

	scores := make(map[string]float64)
	rowSets := make(map[string]map[int]bool)
	for name, sel := range selectors {
		calc := relevance.NewNaive(store)
		result, err := sel.Select(nil, calc, store, k)
		if err != nil {
			t.Fatalf("%s.Select: %v", name, err)
		}
		if result.Size() > k {
			t.Fatalf("%s returned %d rows, want <= %d", name, result.Size(), k)
		}
		scores[name] = result.Score()
		set := make(map[int]bool)
		for _, r := range result.Rows() {
			if set[r] {
				t.Fatalf("%s returned duplicate row %d", name, r)
			}
			set[r] = true
		}
		rowSets[name] = set
	}

	var reference float64
	first := true
	for name, s := range scores {
		if first {
			reference = s
			first = false
			continue
		}
		if math.Abs(s-reference) > 0.1 {
			t.Fatalf("%s score %v diverges from reference %v by more than 0.1", name, s, reference)
		}
	}
}

// TestFastIncrementalWarmStartMatchesSingleShot calls Fast.Select one
// additional row at a time, each call warm-started from the previous
// result, the way a worker recovers per-row marginals. The final subset
// and score must match a single k-row call, which exercises the replay
// path for a warm-start subset of 2+ rows.
func TestFastIncrementalWarmStartMatchesSingleShot(t *testing.T) {
	store := tinyDenseStore(t)
	const k = 4

	calc := relevance.NewNaive(store)
	oneShot, err := (Fast{}).Select(nil, calc, store, k)
	if err != nil {
		t.Fatalf("single-shot Select: %v", err)
	}

	var incremental subset.Subset = subset.NewMutable()
	for step := 1; step <= k; step++ {
		next, err := (Fast{}).Select(incremental, calc, store, step)
		if err != nil {
			t.Fatalf("incremental Select at step %d: %v", step, err)
		}
		if next.Size() == incremental.Size() {
			break
		}
		incremental = next
	}

	if incremental.Size() != oneShot.Size() {
		t.Fatalf("incremental picked %d rows, one-shot picked %d", incremental.Size(), oneShot.Size())
	}
	if math.Abs(incremental.Score()-oneShot.Score()) > 1e-9 {
		t.Fatalf("incremental score %v diverges from one-shot score %v", incremental.Score(), oneShot.Score())
	}
	for i, r := range incremental.Rows() {
		if r != oneShot.RowAt(i) {
			t.Fatalf("incremental row %d at position %d, one-shot has %d", r, i, oneShot.RowAt(i))
		}
	}
}

func TestSelectorsNeverExceedK(t *testing.T) {
	store := tinyDenseStore(t)
	for name, sel := range map[string]Selector{
		"Naive":    Naive{},
		"Lazy":     Lazy{},
		"Fast":     Fast{},
		"LazyFast": LazyFast{},
	} {
		calc := relevance.NewNaive(store)
		result, err := sel.Select(nil, calc, store, 3)
		if err != nil {
			t.Fatalf("%s.Select: %v", name, err)
		}
		if result.Size() > 3 {
			t.Fatalf("%s returned %d rows, want <= 3", name, result.Size())
		}
		for _, r := range result.Rows() {
			if r < 0 || r >= store.Len() {
				t.Fatalf("%s returned out-of-range row %d", name, r)
			}
		}
	}
}
