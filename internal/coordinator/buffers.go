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

// Package coordinator implements the receive side of the streaming
// distributed path: one logical receive buffer per
// sending worker, a round-robin poll loop pulling frames off the
// transport, and a consumer thread draining decoded candidates into a
// titrator.
package coordinator

import (
	"sync"

	"repsub/pkg/subset"
)

// SenderBuffer tracks one worker's streaming state: the subset it has
// contributed so far (rebuilt from the (global-index, local-marginal)
// pairs carried on each frame) and whether it has sent its STOP frame.
type SenderBuffer struct {
	Rank      int
	Accum     *subset.Mutable
	streaming bool
}

func newSenderBuffer(rank int) *SenderBuffer {
	return &SenderBuffer{Rank: rank, Accum: subset.NewMutable(), streaming: true}
}

// Streaming reports whether this sender has not yet sent its STOP frame.
func (b *SenderBuffer) Streaming() bool { return b.streaming }

// Buffers owns one SenderBuffer per worker rank seen so far, created
// lazily on first frame. The consumer goroutine is the only writer, via
// AddRow and MarkDone, but AllDone and BestLocal are safe to poll from any
// goroutine (e.g. a driver waiting on completion, or ResolveStream racing
// the tail of the stream), hence the mutex around every access.
type Buffers struct {
	mu      sync.Mutex
	senders map[int]*SenderBuffer
}

// NewBuffers returns an empty buffer set.
func NewBuffers() *Buffers {
	return &Buffers{senders: make(map[int]*SenderBuffer)}
}

// Get returns the buffer for rank, creating it on first access.
func (b *Buffers) Get(rank int) *SenderBuffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.senders[rank]
	if !ok {
		buf = newSenderBuffer(rank)
		b.senders[rank] = buf
	}
	return buf
}

// AddRow folds one decoded (global-index, local-marginal) pair into rank's
// accumulator under the same mutex BestLocal reads through, so the consumer
// goroutine's writes and a concurrent ResolveStream's read can never race.
func (b *Buffers) AddRow(rank int, globalIndex int, marginal float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	buf, ok := b.senders[rank]
	if !ok {
		buf = newSenderBuffer(rank)
		b.senders[rank] = buf
	}
	buf.Accum.AddRow(globalIndex, marginal)
}

// MarkDone flags rank as having sent its STOP frame.
func (b *Buffers) MarkDone(rank int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if buf, ok := b.senders[rank]; ok {
		buf.streaming = false
	}
}

// AllDone reports whether every sender seen so far has stopped. An empty
// buffer set (no sender has sent a single frame yet) is not considered
// done, since the caller should keep waiting for the first frame.
func (b *Buffers) AllDone() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.senders) == 0 {
		return false
	}
	for _, buf := range b.senders {
		if buf.streaming {
			return false
		}
	}
	return true
}

// BestLocal returns the sender buffer with the highest score, or nil if
// no sender has contributed any rows yet.
func (b *Buffers) BestLocal() *SenderBuffer {
	b.mu.Lock()
	defer b.mu.Unlock()
	var best *SenderBuffer
	for _, buf := range b.senders {
		if best == nil || buf.Accum.Score() > best.Accum.Score() {
			best = buf
		}
	}
	return best
}
