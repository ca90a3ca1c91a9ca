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

	"repsub/internal/telemetry"
	"repsub/pkg/relevance"
	"repsub/pkg/row"
	"repsub/pkg/subset"
)

// lazyItem is one candidate's current upper-bound marginal, lazily
// refreshed on pop (the CELF trick).
type lazyItem struct {
	local       int
	upperBound  float64
	lastUpdated int // number of selections folded into this bound
}

type lazyPQ []*lazyItem

func (pq lazyPQ) Len() int { return len(pq) }

func (pq lazyPQ) Less(i, j int) bool {
	if pq[i].upperBound != pq[j].upperBound {
		return pq[i].upperBound > pq[j].upperBound
	}
	return pq[i].local < pq[j].local
}

func (pq lazyPQ) Swap(i, j int) { pq[i], pq[j] = pq[j], pq[i] }

func (pq *lazyPQ) Push(x interface{}) { *pq = append(*pq, x.(*lazyItem)) }

func (pq *lazyPQ) Pop() interface{} {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// Lazy implements the CELF lazy-greedy selector: a priority
// queue keyed by each candidate's upper-bound marginal; on pop, the bound
// is recomputed against the current selection and the candidate is either
// accepted or reinserted with its refreshed bound.
type Lazy struct{}

// Select implements Selector.
func (Lazy) Select(initial subset.Subset, calc relevance.Calculator, store *row.Store, k int) (subset.Subset, error) {
	n := store.Len()
	result := subset.NewMutableFrom(initial)
	excluded := excludedLocals(initial, store)

	selectedLocals := make([]int, 0, k)
	for _, global := range result.Rows() {
		if local, ok := store.LocalIndexOf(global); ok {
			selectedLocals = append(selectedLocals, local)
		}
	}
	dj, bj := choleskyOfSelected(calc, selectedLocals)

	pq := make(lazyPQ, 0, n)
	for i := 0; i < n; i++ {
		if excluded[i] {
			continue
		}
		gain := marginalGainAgainstSelected(calc, selectedLocals, dj, bj, i)
		pq = append(pq, &lazyItem{local: i, upperBound: gain, lastUpdated: len(selectedLocals)})
	}
	heap.Init(&pq)

	for result.Size() < k && pq.Len() > 0 {
		top := heap.Pop(&pq).(*lazyItem)
		if excluded[top.local] {
			continue
		}
		if top.lastUpdated == len(selectedLocals) {
			// Bound is already current: no candidate could beat it, so
			// accept.
			if top.upperBound <= 0 {
				break
			}
			excluded[top.local] = true
			selectedLocals = append(selectedLocals, top.local)
			result.AddRow(store.GlobalIndex(top.local), top.upperBound)
			telemetry.ObserveMarginalGain(top.upperBound)
			dj, bj = choleskyOfSelected(calc, selectedLocals)
			continue
		}
		top.upperBound = marginalGainAgainstSelected(calc, selectedLocals, dj, bj, top.local)
		top.lastUpdated = len(selectedLocals)
		heap.Push(&pq, top)
	}
	return result, nil
}
