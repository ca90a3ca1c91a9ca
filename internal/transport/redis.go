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
	"encoding/json"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// wireFrame is Frame's over-the-wire encoding: Redis stream fields are
// strings, so the float payload travels as JSON rather than raw bytes.
type wireFrame struct {
	Rank    int       `json:"r"`
	Tag     int32     `json:"t"`
	Payload []float32 `json:"p"`
}

// RedisTransport carries frames over a Redis stream: every worker XADDs to
// the same stream, and the coordinator consumes it through a consumer
// group so restarts don't replay already-acked frames.
type RedisTransport struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
	// pollBlock bounds how long a single Receive call may wait for a new
	// stream entry before reporting ok=false, keeping Receive poll-compatible.
	pollBlock time.Duration
}

// NewRedisTransport connects to addr and ensures the consumer group exists
// on stream, creating the stream if necessary (XGROUP CREATE MKSTREAM).
func NewRedisTransport(ctx context.Context, addr, stream, group, consumer string) (*RedisTransport, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err()
	if err != nil && !isBusyGroupErr(err) {
		return nil, fmt.Errorf("create consumer group: %w", err)
	}
	return &RedisTransport{
		client:    client,
		stream:    stream,
		group:     group,
		consumer:  consumer,
		pollBlock: 50 * time.Millisecond,
	}, nil
}

func isBusyGroupErr(err error) bool {
	return err != nil && len(err.Error()) >= len("BUSYGROUP") && err.Error()[:9] == "BUSYGROUP"
}

// NewSender implements Transport.
func (t *RedisTransport) NewSender(rank int) Sender {
	return &redisSender{client: t.client, stream: t.stream, rank: rank}
}

// Receiver implements Transport.
func (t *RedisTransport) Receiver() Receiver {
	return &redisReceiver{
		client:    t.client,
		stream:    t.stream,
		group:     t.group,
		consumer:  t.consumer,
		pollBlock: t.pollBlock,
	}
}

type redisSender struct {
	client *redis.Client
	stream string
	rank   int
}

func (s *redisSender) Send(ctx context.Context, frame Frame) error {
	frame.SenderRank = s.rank
	b, err := json.Marshal(wireFrame{Rank: frame.SenderRank, Tag: int32(frame.Tag), Payload: frame.Payload})
	if err != nil {
		return fmt.Errorf("marshal frame: %w", err)
	}
	return s.client.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]interface{}{"data": string(b)},
	}).Err()
}

func (s *redisSender) Close(ctx context.Context) error { return nil }

type redisReceiver struct {
	client    *redis.Client
	stream    string
	group     string
	consumer  string
	pollBlock time.Duration
}

// Receive implements Receiver by reading one new stream entry for this
// consumer and acking it immediately (at-least-once, not exactly-once: a
// crash between read and ack can redeliver a frame, and the coordinator
// then processes the redelivered frame again as a new candidate).
func (r *redisReceiver) Receive(ctx context.Context) (Frame, bool, error) {
	res, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    r.group,
		Consumer: r.consumer,
		Streams:  []string{r.stream, ">"},
		Count:    1,
		Block:    r.pollBlock,
	}).Result()
	if err == redis.Nil {
		return Frame{}, false, nil
	}
	if err != nil {
		return Frame{}, false, fmt.Errorf("xreadgroup: %w", err)
	}
	if len(res) == 0 || len(res[0].Messages) == 0 {
		return Frame{}, false, nil
	}
	msg := res[0].Messages[0]
	raw, _ := msg.Values["data"].(string)
	var wf wireFrame
	if err := json.Unmarshal([]byte(raw), &wf); err != nil {
		return Frame{}, false, fmt.Errorf("unmarshal frame id=%s: %w", msg.ID, err)
	}
	if err := r.client.XAck(ctx, r.stream, r.group, msg.ID).Err(); err != nil {
		return Frame{}, false, fmt.Errorf("xack id=%s: %w", msg.ID, err)
	}
	return Frame{SenderRank: wf.Rank, Tag: Tag(wf.Tag), Payload: wf.Payload}, true, nil
}
