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

package transport

import "context"

// ChannelTransport is the in-process default: workers and the coordinator
// share a single Go process (single-machine mode, or tests), so frames
// move over a buffered channel instead of a real message layer.
type ChannelTransport struct {
	frames chan Frame
}

// NewChannelTransport returns a ready-to-use in-process transport with the
// given channel buffer depth.
func NewChannelTransport(buffer int) *ChannelTransport {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelTransport{frames: make(chan Frame, buffer)}
}

// NewSender implements Transport.
func (c *ChannelTransport) NewSender(rank int) Sender {
	return &channelSender{rank: rank, frames: c.frames}
}

// Receiver implements Transport.
func (c *ChannelTransport) Receiver() Receiver {
	return &channelReceiver{frames: c.frames}
}

type channelSender struct {
	rank   int
	frames chan Frame
}

func (s *channelSender) Send(ctx context.Context, frame Frame) error {
	frame.SenderRank = s.rank
	select {
	case s.frames <- frame:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *channelSender) Close(ctx context.Context) error { return nil }

type channelReceiver struct {
	frames chan Frame
}

// Receive implements Receiver, never blocking: an empty channel returns
// ok=false immediately so the coordinator's poll loop can round-robin
// across other work instead of stalling.
func (r *channelReceiver) Receive(ctx context.Context) (Frame, bool, error) {
	select {
	case f := <-r.frames:
		return f, true, nil
	default:
		return Frame{}, false, nil
	}
}
