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

import (
	"context"
	"fmt"
)

// LogTransport is a dependency-free debug backend: every Send prints the
// frame to stdout and fans it into the same in-process queue a
// ChannelTransport would use, so a deployment can inspect traffic without
// standing up Redis.
type LogTransport struct {
	inner *ChannelTransport
}

// NewLogTransport wraps a ChannelTransport with stdout tracing.
func NewLogTransport(buffer int) *LogTransport {
	return &LogTransport{inner: NewChannelTransport(buffer)}
}

func (l *LogTransport) NewSender(rank int) Sender {
	return &logSender{rank: rank, inner: l.inner.NewSender(rank)}
}

func (l *LogTransport) Receiver() Receiver {
	return l.inner.Receiver()
}

type logSender struct {
	rank  int
	inner Sender
}

func (s *logSender) Send(ctx context.Context, frame Frame) error {
	fmt.Printf("[transport-log] sender=%d tag=%d payload_len=%d\n", s.rank, frame.Tag, len(frame.Payload))
	return s.inner.Send(ctx, frame)
}

func (s *logSender) Close(ctx context.Context) error {
	fmt.Printf("[transport-log] sender=%d closed\n", s.rank)
	return s.inner.Close(ctx)
}
