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
	"container/heap"
	"math"

	"repsub/internal/telemetry"
	"repsub/pkg/relevance"
	"repsub/pkg/row"
	"repsub/pkg/subset"
)

// lazyFastItem tracks one candidate's Cholesky projection state alongside
// its lazily-maintained heap key: u[i] is the number of updates applied,
// v[i] maps a selected row to its projection value.
type lazyFastItem struct {
	local int
	diag  float64
	proj  []float64 // v[i]: projection against selected rows applied so far
	u     int        // number of selected rows folded into proj/diag
}

type lazyFastPQ []*lazyFastItem

func (pq lazyFastPQ) Len() int { return len(pq) }

func (pq lazyFastPQ) Less(i, j int) bool {
	if pq[i].diag != pq[j].diag {
		return pq[i].diag > pq[j].diag
	}
	return pq[i].local < pq[j].local
}

func (pq lazyFastPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *lazyFastPQ) Push(x interface{}) { *pq = append(*pq, x.(*lazyFastItem)) }

func (pq *lazyFastPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// LazyFast combines the Lazy selector's priority queue with Fast's
// incremental Cholesky updates: each popped candidate is brought up to
// date by replaying only the selections it missed, not a full recompute.
type LazyFast struct {
	Epsilon float64
}

// Select implements Selector.
func (lf LazyFast) Select(initial subset.Subset, calc relevance.Calculator, store *row.Store, k int) (subset.Subset, error) {
	eps := lf.Epsilon
	if eps == 0 {
		eps = DefaultEpsilon
	}

	n := store.Len()
	result := subset.NewMutableFrom(initial)
	excluded := excludedLocals(initial, store)

	selectedLocals := make([]int, 0, k)
	for _, global := range result.Rows() {
		if local, ok := store.LocalIndexOf(global); ok {
			selectedLocals = append(selectedLocals, local)
		}
	}
	selectedDj, selectedBjFull := choleskyOfSelected(calc, selectedLocals)

	pq := make(lazyFastPQ, 0, n)
	for i := 0; i < n; i++ {
		if excluded[i] {
			continue
		}
		item := &lazyFastItem{local: i, diag: kernelEntry(calc, i, i), u: 0}
		pq = append(pq, item)
	}
	heap.Init(&pq)

	for result.Size() < k && pq.Len() > 0 {
		top := heap.Pop(&pq).(*lazyFastItem)
		if excluded[top.local] {
			continue
		}
		if top.u < len(selectedLocals) {
			catchUp(calc, top, selectedLocals, selectedDj, selectedBjFull)
		}
		if top.diag < eps {
			continue // numerical guard: drop, never accepted
		}
		if pq.Len() > 0 && top.diag < pq[0].diag {
			heap.Push(&pq, top)
			continue
		}
		marginal := math.Log(top.diag)
		excluded[top.local] = true
		selectedLocals = append(selectedLocals, top.local)
		result.AddRow(store.GlobalIndex(top.local), marginal)
		telemetry.ObserveMarginalGain(marginal)
		selectedDj, selectedBjFull = choleskyOfSelected(calc, selectedLocals)
	}
	return result, nil
}

// catchUp replays the selections top has not yet seen (indices
// [top.u, len(selectedLocals))) against its running projection, updating
// diag and proj in place.
func catchUp(calc relevance.Calculator, top *lazyFastItem, selectedLocals []int, dj []float64, bj [][]float64) {
	for idx := top.u; idx < len(selectedLocals); idx++ {
		j := selectedLocals[idx]
		e := (kernelEntry(calc, top.local, j) - dotPrefix(bj[idx], top.proj)) / dj[idx]
		top.proj = append(top.proj, e)
		top.diag -= e * e
	}
	top.u = len(selectedLocals)
}
