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

// Package transport provides the message-layer abstraction between a
// worker and the coordinator: sending wire frames and receiving them on
// the other end, independent of the underlying carrier.
package transport

import "context"

// Tag accompanies every frame sent over a Transport: CONTINUE=0 during
// streaming, STOP=1 on the final frame of a sender.
type Tag int32

const (
	Continue Tag = 0
	Stop     Tag = 1
)

// Frame is one wire frame in flight: a sender's rank, the encoded payload
// (already including the trailing control floats and sentinel, see
// internal/wire), and the tag under which it was sent.
type Frame struct {
	SenderRank int
	Payload    []float32
	Tag        Tag
}

// Sender is the worker-facing half of a Transport: push one frame at a
// time, in order, to the coordinator.
type Sender interface {
	Send(ctx context.Context, frame Frame) error
	Close(ctx context.Context) error
}

// Receiver is the coordinator-facing half: poll for the next available
// frame from any sender. Receive must be non-blocking-poll-compatible: it
// returns ok=false (not an error) when nothing is ready yet, matching the
// spec's "receive-poll (non-blocking, re-armed per frame)" model.
type Receiver interface {
	Receive(ctx context.Context) (Frame, bool, error)
}

// Transport is the bidirectional message layer a deployment configures
// once, then hands a Sender half to each worker and a Receiver half to the
// coordinator.
type Transport interface {
	NewSender(rank int) Sender
	Receiver() Receiver
}
