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

// Package bucket implements the threshold-bucket titrator primitive: an
// incremental Cholesky factorization that lets the sieve streaming and
// three-sieve titrators accept or reject a candidate row in O(|S|) time
// per row, without ever materializing the full kernel matrix.
package bucket

import (
	"math"

	"repsub/internal/telemetry"
	"repsub/pkg/row"
	"repsub/pkg/subset"
)

// ThresholdBucket holds a capacity-k subset plus the incremental Cholesky
// state (dⱼ, bⱼ) for every selected row, in insertion order. The Cholesky
// state exactly reproduces the subset's log-determinant at all times.
type ThresholdBucket struct {
	threshold float64
	k         int

	solution     *subset.Mutable
	solutionRows []row.Row
	d            []float64
	b            [][]float64
}

// New creates an empty bucket with the given threshold and capacity k.
func New(threshold float64, k int) *ThresholdBucket {
	return &ThresholdBucket{
		threshold: threshold,
		k:         k,
		solution:  subset.NewMutable(),
	}
}

// Threshold returns tau.
func (t *ThresholdBucket) Threshold() float64 { return t.threshold }

// Utility returns the bucket's current log-determinant score.
func (t *ThresholdBucket) Utility() float64 { return t.solution.Score() }

// Size returns the number of rows currently accepted.
func (t *ThresholdBucket) Size() int { return t.solution.Size() }

// IsFull reports whether the bucket has reached capacity k.
func (t *ThresholdBucket) IsFull() bool { return t.solution.Size() >= t.k }

// Solution returns the accumulated subset. The bucket keeps ownership of
// its Cholesky state; callers that need the subset alone should use
// ReturnSolutionDestroyBucket.
func (t *ThresholdBucket) Solution() subset.Subset { return t.solution }

// ReturnSolutionDestroyBucket hands off the accumulated subset and leaves
// the bucket unusable — the caller is now the sole owner of the result.
func (t *ThresholdBucket) ReturnSolutionDestroyBucket() subset.Subset {
	result := t.solution
	t.solution = nil
	t.solutionRows = nil
	t.d = nil
	t.b = nil
	return result
}

// AttemptInsert runs the incremental Cholesky update for candidate data at
// rowIndex and appends it iff its marginal gain passes the threshold
// predicate. Returns true iff the row was accepted.
func (t *ThresholdBucket) AttemptInsert(rowIndex int, data row.Row) bool {
	if t.solution == nil || t.solution.Size() >= t.k {
		return false
	}

	values := rowValues(data)
	dx := math.Sqrt(1 + float64(row.DotProduct(values, values)))
	cx := make([]float64, 0, len(t.solutionRows))

	for j := 0; j < len(t.solutionRows); j++ {
		jValues := rowValues(t.solutionRows[j])
		ej := (float64(row.DotProduct(values, jValues)) - dotFloat64(t.b[j], cx)) / t.d[j]
		cx = append(cx, ej)
		dx = math.Sqrt(dx*dx - ej*ej)
	}

	marginal := math.Log(dx * dx)
	if !t.passesThreshold(marginal) {
		telemetry.ObserveTitratorDecision(false)
		return false
	}

	t.solution.AddRow(rowIndex, marginal)
	t.solutionRows = append(t.solutionRows, data)
	t.d = append(t.d, dx)
	t.b = append(t.b, cx)
	telemetry.ObserveTitratorDecision(true)
	return true
}

func (t *ThresholdBucket) passesThreshold(marginalGain float64) bool {
	remaining := float64(t.k - t.solution.Size())
	return marginalGain >= (t.threshold/2-t.solution.Score())/remaining
}

// TransferContents moves this bucket's accumulated state into a fresh
// bucket at newThreshold, leaving this bucket empty. ThreeSieve uses this
// to advance through the threshold ladder without losing prior inserts.
// An empty bucket transfers to an equally empty bucket: a no-op beyond
// lowering the threshold.
func (t *ThresholdBucket) TransferContents(newThreshold float64) *ThresholdBucket {
	next := &ThresholdBucket{
		threshold:    newThreshold,
		k:            t.k,
		solution:     t.solution,
		solutionRows: t.solutionRows,
		d:            t.d,
		b:            t.b,
	}
	t.solution = subset.NewMutable()
	t.solutionRows = nil
	t.d = nil
	t.b = nil
	return next
}

func dotFloat64(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// rowValues extracts a dense []float32 view for the dot products the
// Cholesky update needs, regardless of the row's underlying variant.
func rowValues(r row.Row) []float32 {
	switch v := r.(type) {
	case row.DenseRow:
		return v.Values
	case row.SparseRow:
		dense := make([]float32, v.TotalColumns)
		for idx, val := range v.Values {
			if idx >= 0 && idx < len(dense) {
				dense[idx] = val
			}
		}
		return dense
	default:
		return nil
	}
}
