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

package loader

import (
	"math"

	"repsub/pkg/row"
)

// NormalizingSource L2-normalizes every row a delegate Source produces.
// Off by default; a dataset that already arrives normalized should skip
// this decorator entirely rather than pay its cost for a no-op.
type NormalizingSource struct {
	Delegate Source
}

// Load implements Source.
func (n *NormalizingSource) Load() ([]row.Row, error) {
	rows, err := n.Delegate.Load()
	if err != nil {
		return nil, err
	}
	out := make([]row.Row, len(rows))
	for i, r := range rows {
		out[i] = normalize(r)
	}
	return out, nil
}

func normalize(r row.Row) row.Row {
	switch v := r.(type) {
	case row.DenseRow:
		norm := l2Norm(v.Values)
		if norm == 0 {
			return v
		}
		values := make([]float32, len(v.Values))
		for i, x := range v.Values {
			values[i] = x / norm
		}
		return row.NewDenseRow(values)
	case row.SparseRow:
		norm := l2NormMap(v.Values)
		if norm == 0 {
			return v
		}
		values := make(map[int]float32, len(v.Values))
		for idx, x := range v.Values {
			values[idx] = x / norm
		}
		return row.NewSparseRow(values, v.TotalColumns)
	default:
		return r
	}
}

func l2Norm(values []float32) float32 {
	var sumSq float64
	for _, v := range values {
		sumSq += float64(v) * float64(v)
	}
	return float32(math.Sqrt(sumSq))
}

func l2NormMap(values map[int]float32) float32 {
	var sumSq float64
	for _, v := range values {
		sumSq += float64(v) * float64(v)
	}
	return float32(math.Sqrt(sumSq))
}
