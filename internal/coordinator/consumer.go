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
	"runtime"
	"sync/atomic"

	"repsub/internal/telemetry"
	"repsub/internal/transport"
	"repsub/internal/wire"
	"repsub/pkg/candidate"
)

// Consumer is the coordinator's single poll thread: it round-robins over
// the transport's receiver (frames are already tagged by sender rank, so
// one Receiver stands in for "one buffer per worker"), decodes each frame,
// folds it into that sender's local subset, and enqueues a CandidateSeed
// for the titrator-draining goroutine.
type Consumer struct {
	receiver     transport.Receiver
	buffers      *Buffers
	queue        *candidate.Queue
	kind         wire.Kind
	totalColumns int
	receiving    atomic.Bool
}

// NewConsumer wires a receiver, a decode kind/column-count, and the
// buffers and queue it feeds.
func NewConsumer(receiver transport.Receiver, buffers *Buffers, queue *candidate.Queue, kind wire.Kind, totalColumns int) *Consumer {
	c := &Consumer{
		receiver:     receiver,
		buffers:      buffers,
		queue:        queue,
		kind:         kind,
		totalColumns: totalColumns,
	}
	c.receiving.Store(true)
	return c
}

// StopReceiving implements the stop-early option: the poll loop
// stops pulling new frames from the transport, lets the drain loop finish
// whatever is already queued, and Run returns.
func (c *Consumer) StopReceiving() {
	c.receiving.Store(false)
}

// Run polls until every sender has sent its STOP frame, or StopReceiving
// is called, then closes the candidate queue.
func (c *Consumer) Run(ctx context.Context) error {
	for c.receiving.Load() {
		select {
		case <-ctx.Done():
			c.queue.Close()
			return ctx.Err()
		default:
		}

		processed, err := c.pollOnce(ctx)
		if err != nil {
			c.queue.Close()
			return err
		}
		if !processed {
			if c.buffers.AllDone() {
				break
			}
			runtime.Gosched()
		}
	}
	c.queue.Close()
	return nil
}

// pollOnce performs one non-blocking receive-and-decode step.
func (c *Consumer) pollOnce(ctx context.Context) (bool, error) {
	frame, ok, err := c.receiver.Receive(ctx)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}

	decoded, err := wire.Decode(c.kind, frame.Payload, c.totalColumns)
	if err != nil {
		return false, err
	}
	telemetry.ObserveFrame()

	c.buffers.AddRow(frame.SenderRank, decoded.GlobalIndex, decoded.LocalMarginal)
	c.queue.Push(candidate.Seed{
		GlobalIndex: decoded.GlobalIndex,
		Row:         decoded.Row,
		OriginRank:  frame.SenderRank,
	})
	if frame.Tag == transport.Stop {
		c.buffers.MarkDone(frame.SenderRank)
	}
	return true, nil
}
