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

	"repsub/internal/telemetry"
	"repsub/pkg/relevance"
	"repsub/pkg/row"
	"repsub/pkg/subset"
)

// Fast is the Cholesky-incremental selector, the preferred
// default: diag[i] is updated in place after each pick instead of being
// recomputed, turning an O(k*n^2) baseline into O(k*n).
type Fast struct {
	// Epsilon is the numerical guard below which a diagonal is treated as
	// exhausted. Zero means DefaultEpsilon.
	Epsilon float64
}

// Select implements Selector.
func (f Fast) Select(initial subset.Subset, calc relevance.Calculator, store *row.Store, k int) (subset.Subset, error) {
	eps := f.Epsilon
	if eps == 0 {
		eps = DefaultEpsilon
	}

	n := store.Len()
	result := subset.NewMutableFrom(initial)

	diag := make([]float64, n)
	for i := 0; i < n; i++ {
		diag[i] = kernelEntry(calc, i, i)
	}
	c := make([][]float64, n)

	// Replay any warm-start selections in insertion order so diag/c reach
	// the state a from-scratch run would have produced. Each row is
	// excluded only after its own applyChol call: excluding it any
	// earlier would make that call skip folding it into still-unselected
	// rows' (and later warm-start rows') running Cholesky state, the same
	// way a fresh selection step folds every still-unselected row.
	excluded := make(map[int]bool)
	for _, global := range result.Rows() {
		j, ok := store.LocalIndexOf(global)
		if !ok {
			continue
		}
		applyChol(calc, diag, c, excluded, j)
		excluded[j] = true
	}

	for step := result.Size(); step < k; step++ {
		j, best := argmaxDiag(diag, excluded, n)
		if j == -1 || best <= eps {
			break
		}
		marginal := math.Log(best)
		excluded[j] = true
		result.AddRow(store.GlobalIndex(j), marginal)
		telemetry.ObserveMarginalGain(marginal)
		applyChol(calc, diag, c, excluded, j)
	}
	return result, nil
}

// applyChol folds newly selected local j into every still-unselected i's
// running (c[i], diag[i]) state.
func applyChol(calc relevance.Calculator, diag []float64, c [][]float64, excluded map[int]bool, j int) {
	sqrtDiagJ := math.Sqrt(diag[j])
	for i := 0; i < len(diag); i++ {
		if excluded[i] || i == j {
			continue
		}
		e := (kernelEntry(calc, j, i) - dotPrefix(c[j], c[i])) / sqrtDiagJ
		c[i] = append(c[i], e)
		diag[i] -= e * e
	}
	// c[j] already holds bⱼ: the projections accumulated against every
	// row selected before j, built up by earlier applyChol calls while j
	// was still unselected. It must not gain an entry for itself.
}

// argmaxDiag returns the lowest-index argmax over unselected diag
// entries: ties break toward the lowest index.
func argmaxDiag(diag []float64, excluded map[int]bool, n int) (int, float64) {
	best := -1
	bestVal := -math.MaxFloat64
	for i := 0; i < n; i++ {
		if excluded[i] {
			continue
		}
		if diag[i] > bestVal {
			bestVal = diag[i]
			best = i
		}
	}
	return best, bestVal
}
