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

// Package randgreedi implements the RandGreedI distributed path: gather
// every worker's bulk local-subset message, re-run the global greedy
// selector over their union, and keep whichever of that global re-run or
// the single best worker's local subset scores higher.
package randgreedi

import (
	"context"
	"fmt"
	"runtime"

	"repsub/internal/repsuberr"
	"repsub/internal/transport"
	"repsub/internal/wire"
	"repsub/pkg/greedy"
	"repsub/pkg/relevance"
	"repsub/pkg/row"
	"repsub/pkg/subset"
)

// Gather polls receiver until exactly one bulk message has arrived for
// every rank in [0, worldSize), decoding each with wire.DecodeBulk. It
// never blocks the caller's goroutine beyond a runtime.Gosched yield
// between empty polls, matching the coordinator's other poll loops.
func Gather(ctx context.Context, receiver transport.Receiver, worldSize int, kind wire.Kind, totalColumns int) (map[int]wire.DecodedBulk, error) {
	out := make(map[int]wire.DecodedBulk, worldSize)
	for len(out) < worldSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		frame, ok, err := receiver.Receive(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: randgreedi gather: %v", repsuberr.ErrTransportFailure, err)
		}
		if !ok {
			runtime.Gosched()
			continue
		}
		bulk, err := wire.DecodeBulk(kind, frame.Payload, totalColumns)
		if err != nil {
			return nil, err
		}
		out[frame.SenderRank] = bulk
	}
	return out, nil
}

// CalculatorFactory builds the relevance calculator the global re-run
// scores candidates with, over the union store assembled from every
// worker's reported rows.
type CalculatorFactory func(*row.Store) relevance.Calculator

// Resolve builds the union of every gathered worker's rows, re-runs
// selector over it for k picks, and returns whichever of that global
// subset or the single best-scoring worker's own local subset has the
// higher cumulative score.
func Resolve(gathered map[int]wire.DecodedBulk, factory CalculatorFactory, selector greedy.Selector, k int) (subset.Subset, error) {
	var rows []row.Row
	var globals []int
	var bestLocal subset.Subset

	for _, bulk := range gathered {
		local := localSubset(bulk)
		if bestLocal == nil || local.Score() > bestLocal.Score() {
			bestLocal = local
		}
		for _, f := range bulk.Frames {
			rows = append(rows, f.Row)
			globals = append(globals, f.GlobalIndex)
		}
	}

	store, err := row.NewReceived(rows, globals)
	if err != nil {
		return nil, err
	}
	calc := factory(store)
	global, err := selector.Select(nil, calc, store, k)
	if err != nil {
		return nil, err
	}

	if bestLocal != nil && bestLocal.Score() > global.Score() {
		return bestLocal, nil
	}
	return global, nil
}

// localSubset reconstructs one worker's own local subset (as reported in
// its bulk message) as a Subset, for the best-of comparison in Resolve. The
// score comes from the bulk message's own reported total rather than a
// resummed-from-marginals figure, so the comparison uses exactly what the
// worker claimed.
func localSubset(bulk wire.DecodedBulk) subset.Subset {
	rows := make([]int, len(bulk.Frames))
	for i, f := range bulk.Frames {
		rows[i] = f.GlobalIndex
	}
	return subset.NewMutableFromReported(rows, bulk.LocalScore)
}
