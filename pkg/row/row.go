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

// Package row provides the uniform row representation shared by every
// layer of the representative subset selection engine: a Row is either a
// dense float32 vector or a sparse column-index-to-value map, both exposing
// size and dot product. A dataset's column count C must be uniform across
// every row it contains.
package row

import "sort"

// Row is a single data point. Implementations are DenseRow and SparseRow.
type Row interface {
	// Size returns C, the number of logical columns.
	Size() int

	// DotProduct computes the Euclidean inner product with other. Lengths
	// are tolerated to mismatch: only the first min(a,b) components
	// contribute for dense rows, and sparse rows intersect by key.
	DotProduct(other Row) float32
}

// DenseRow is a fully materialized float32 vector.
type DenseRow struct {
	Values []float32
}

// NewDenseRow wraps values as a DenseRow without copying.
func NewDenseRow(values []float32) DenseRow {
	return DenseRow{Values: values}
}

// Size implements Row.
func (d DenseRow) Size() int { return len(d.Values) }

// DotProduct implements Row. Dense-dense truncates to the shorter length.
// Dense-sparse only sums over the sparse side's present indices.
func (d DenseRow) DotProduct(other Row) float32 {
	switch o := other.(type) {
	case DenseRow:
		return denseDotProduct(d.Values, o.Values)
	case SparseRow:
		return o.DotProduct(d)
	default:
		return 0
	}
}

// SparseRow holds only the non-zero columns. TotalColumns is the logical
// size C, which may exceed the highest populated index.
type SparseRow struct {
	Values       map[int]float32
	TotalColumns int
}

// NewSparseRow wraps values as a SparseRow without copying.
func NewSparseRow(values map[int]float32, totalColumns int) SparseRow {
	return SparseRow{Values: values, TotalColumns: totalColumns}
}

// Size implements Row.
func (s SparseRow) Size() int { return s.TotalColumns }

// DotProduct implements Row. Sparse-sparse is a classic sorted-key
// intersection (spec's corrected semantics for the original's buggy
// value-vs-key comparison). Sparse-dense sums the sparse side's indices
// that fall within the dense vector's length.
func (s SparseRow) DotProduct(other Row) float32 {
	switch o := other.(type) {
	case SparseRow:
		return sparseDotProduct(s.Values, o.Values)
	case DenseRow:
		var sum float32
		for idx, v := range s.Values {
			if idx >= 0 && idx < len(o.Values) {
				sum += v * o.Values[idx]
			}
		}
		return sum
	default:
		return 0
	}
}

func denseDotProduct(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var sum float32
	for i := 0; i < n; i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// sparseDotProduct intersects two column->value maps by key. Sorting keys
// first keeps the result deterministic for floating point summation order,
// so repeated runs over the same rows give identical scores.
func sparseDotProduct(a, b map[int]float32) float32 {
	small, large := a, b
	if len(b) < len(a) {
		small, large = b, a
	}
	keys := make([]int, 0, len(small))
	for k := range small {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var sum float32
	for _, k := range keys {
		if v, ok := large[k]; ok {
			sum += small[k] * v
		}
	}
	return sum
}

// DotProduct is the standalone form used by the kernel matrix and threshold
// bucket, tolerant of length mismatch on plain float32 slices.
func DotProduct(a, b []float32) float32 {
	return denseDotProduct(a, b)
}
