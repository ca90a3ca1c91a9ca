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

package coordinator

import (
	"context"
	"sync"
	"testing"

	"repsub/internal/transport"
	"repsub/internal/wire"
	"repsub/pkg/candidate"
	"repsub/pkg/row"
	"repsub/pkg/titrator"
)

func TestConsumerAndDrainQueueEndToEnd(t *testing.T) {
	tr := transport.NewChannelTransport(8)
	sender := tr.NewSender(1)
	ctx := context.Background()

	rows := []row.Row{
		row.NewDenseRow([]float32{1, 1, 0}),
		row.NewDenseRow([]float32{0, 1, 1}),
		row.NewDenseRow([]float32{1, 0, 1}),
	}
	for i, r := range rows {
		tag := transport.Continue
		if i == len(rows)-1 {
			tag = transport.Stop
		}
		// Small local marginals keep this sender's own 3-row subset from
		// outscoring the k=2 titrator result in ResolveStream.
		frame, err := wire.Encode(wire.Dense, r, i, 0.1)
		if err != nil {
			t.Fatalf("Encode %d: %v", i, err)
		}
		if err := sender.Send(ctx, transport.Frame{Payload: frame, Tag: tag}); err != nil {
			t.Fatalf("Send %d: %v", i, err)
		}
	}

	buffers := NewBuffers()
	queue := candidate.New()
	consumer := NewConsumer(tr.Receiver(), buffers, queue, wire.Dense, 3)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := consumer.Run(ctx); err != nil {
			t.Errorf("Run: %v", err)
		}
	}()

	ti := titrator.NewSieveStreaming(2, 0.1, 1e-9, true)
	DrainQueue(ti, queue)
	wg.Wait()

	result := ResolveStream(ti, buffers)
	if result.Size() == 0 {
		t.Fatalf("expected a non-empty resolved subset")
	}
	if result.Size() > 2 {
		t.Fatalf("resolved subset size %d exceeds k=2", result.Size())
	}

	buf := buffers.Get(1)
	if buf.Accum.Size() != 3 {
		t.Fatalf("sender buffer recorded %d rows, want 3", buf.Accum.Size())
	}
	if buf.Streaming() {
		t.Fatalf("sender buffer should be marked done after STOP frame")
	}
}

func TestBuffersAllDoneRequiresAtLeastOneSender(t *testing.T) {
	b := NewBuffers()
	if b.AllDone() {
		t.Fatal("AllDone should be false before any sender is seen")
	}
	b.Get(0)
	if b.AllDone() {
		t.Fatal("AllDone should be false while sender 0 is still streaming")
	}
	b.MarkDone(0)
	if !b.AllDone() {
		t.Fatal("AllDone should be true once the only sender is marked done")
	}
}
