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

package randgreedi

import (
	"context"
	"testing"
	"time"

	"repsub/internal/transport"
	"repsub/internal/wire"
	"repsub/internal/worker"
	"repsub/pkg/greedy"
	"repsub/pkg/relevance"
	"repsub/pkg/row"
)

func newShardStore(t *testing.T, globals []int, values [][]float32) *row.Store {
	t.Helper()
	rows := make([]row.Row, len(values))
	for i, v := range values {
		rows[i] = row.NewDenseRow(v)
	}
	s, err := row.NewSegmented(rows, globals)
	if err != nil {
		t.Fatalf("NewSegmented: %v", err)
	}
	return s
}

func TestGatherAndResolveEndToEnd(t *testing.T) {
	tr := transport.NewChannelTransport(16)

	store0 := newShardStore(t, []int{0, 1}, [][]float32{{1, 0, 0}, {0, 1, 0}})
	store1 := newShardStore(t, []int{2, 3}, [][]float32{{0, 0, 1}, {1, 1, 0}})

	w0 := &worker.Worker{Rank: 0, Store: store0, Calc: relevance.NewNaive(store0), Selector: greedy.Fast{}, K: 1, Kind: wire.Dense, Sender: tr.NewSender(0)}
	w1 := &worker.Worker{Rank: 1, Store: store1, Calc: relevance.NewNaive(store1), Selector: greedy.Fast{}, K: 1, Kind: wire.Dense, Sender: tr.NewSender(1)}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := w0.RunBulk(ctx); err != nil {
		t.Fatalf("w0.RunBulk: %v", err)
	}
	if err := w1.RunBulk(ctx); err != nil {
		t.Fatalf("w1.RunBulk: %v", err)
	}

	gathered, err := Gather(ctx, tr.Receiver(), 2, wire.Dense, 3)
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(gathered) != 2 {
		t.Fatalf("gathered %d ranks, want 2", len(gathered))
	}

	factory := func(s *row.Store) relevance.Calculator { return relevance.NewNaive(s) }
	result, err := Resolve(gathered, factory, greedy.Fast{}, 2)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if result.Size() == 0 {
		t.Fatalf("expected a non-empty resolved subset")
	}
	if result.Score() <= 0 {
		t.Fatalf("expected positive score, got %v", result.Score())
	}
}
