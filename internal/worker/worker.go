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

package worker

import (
	"context"
	"fmt"

	"repsub/internal/repsuberr"
	"repsub/internal/transport"
	"repsub/internal/wire"
	"repsub/pkg/greedy"
	"repsub/pkg/relevance"
	"repsub/pkg/row"
	"repsub/pkg/subset"
)

// Worker runs one shard's local greedy selection and ships the result to
// the coordinator, either as a per-row stream (for the distributed
// streaming titrators) or as a single bulk message (for RandGreedI).
type Worker struct {
	Rank     int
	Store    *row.Store
	Calc     relevance.Calculator
	Selector greedy.Selector
	K        int // floor(alpha*k), this worker's local seed budget
	Kind     wire.Kind
	Sender   transport.Sender
}

// RunStreaming selects up to w.K local rows, then sends one frame per
// selected row in selection order, tagging every frame Continue except the
// last one, which carries Stop so the coordinator can retire this sender's
// buffer. No frame is sent until the local selection has finished.
func (w *Worker) RunStreaming(ctx context.Context) error {
	picks, err := w.selectLocal(ctx)
	if err != nil {
		return err
	}
	for i, p := range picks {
		tag := transport.Continue
		if i == len(picks)-1 {
			tag = transport.Stop
		}
		payload, err := wire.Encode(w.Kind, p.row, w.Store.GlobalIndex(p.local), p.marginal)
		if err != nil {
			return err
		}
		if err := w.Sender.Send(ctx, transport.Frame{SenderRank: w.Rank, Payload: payload, Tag: tag}); err != nil {
			return fmt.Errorf("%w: worker %d send: %v", repsuberr.ErrTransportFailure, w.Rank, err)
		}
	}
	// Close out the sender. With no picks no frame is sent at all, so the
	// coordinator never creates a buffer for this rank or waits on its STOP.
	return w.Sender.Close(ctx)
}

// RunBulk selects up to w.K local rows and ships them all in a single
// RandGreedI gather message.
func (w *Worker) RunBulk(ctx context.Context) error {
	picks, err := w.selectLocal(ctx)
	if err != nil {
		return err
	}
	rows := make([]row.Row, len(picks))
	globals := make([]int, len(picks))
	marginals := make([]float64, len(picks))
	var localScore float64
	for i, p := range picks {
		rows[i] = p.row
		globals[i] = w.Store.GlobalIndex(p.local)
		marginals[i] = p.marginal
		localScore += p.marginal
	}
	msg, err := wire.EncodeBulk(w.Kind, localScore, rows, globals, marginals)
	if err != nil {
		return err
	}
	if err := w.Sender.Send(ctx, transport.Frame{SenderRank: w.Rank, Payload: msg, Tag: transport.Stop}); err != nil {
		return fmt.Errorf("%w: worker %d bulk send: %v", repsuberr.ErrTransportFailure, w.Rank, err)
	}
	return w.Sender.Close(ctx)
}

type pick struct {
	local    int
	row      row.Row
	marginal float64
}

// selectLocal runs the configured selector one additional row at a time so
// each row's individual marginal gain (not just the cumulative score) is
// recoverable for the outgoing wire frame.
func (w *Worker) selectLocal(ctx context.Context) ([]pick, error) {
	var (
		current subset.Subset = subset.NewMutable()
		picks   []pick
	)
	for step := 1; step <= w.K; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := w.Selector.Select(current, w.Calc, w.Store, step)
		if err != nil {
			return nil, err
		}
		if next.Size() == current.Size() {
			// Exhausted: no row with positive marginal gain remains.
			break
		}
		marginal := next.Score() - current.Score()
		global := next.RowAt(next.Size() - 1)
		local, ok := w.Store.LocalIndexOf(global)
		if !ok {
			return nil, fmt.Errorf("%w: selected global %d not in local store", repsuberr.ErrInvariantViolation, global)
		}
		picks = append(picks, pick{local: local, row: w.Store.RowAt(local), marginal: marginal})
		current = next
	}
	return picks, nil
}
