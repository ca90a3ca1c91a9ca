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

// Build constructs a Transport for the given adapter name:
//   - "channel" (default): in-process, single-machine.
//   - "redis": Redis-streams-backed, for a real multi-process deployment.
//   - "log": in-process plus stdout tracing, for debugging without infra.
func Build(ctx context.Context, adapter string, opts Options) (Transport, error) {
	switch adapter {
	case "", "channel":
		return NewChannelTransport(opts.ChannelBuffer), nil
	case "log":
		return NewLogTransport(opts.ChannelBuffer), nil
	case "redis":
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis transport requires RedisAddr")
		}
		stream := opts.RedisStream
		if stream == "" {
			stream = "repsub-frames"
		}
		group := opts.RedisGroup
		if group == "" {
			group = "repsub-coordinator"
		}
		consumer := opts.RedisConsumer
		if consumer == "" {
			consumer = "coordinator-0"
		}
		return NewRedisTransport(ctx, opts.RedisAddr, stream, group, consumer)
	default:
		return nil, fmt.Errorf("unknown transport adapter: %s", adapter)
	}
}
