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

// Package config holds the recognized configuration table, following the
// same zero-value-defaults-plus-constructor shape used across the rest
// of this module.
package config

import (
	"fmt"

	"repsub/pkg/greedy"
)

// Algorithm selects the centralized selector.
type Algorithm int

const (
	Naive Algorithm = iota
	Lazy
	Fast
	LazyFast
	Streaming
)

// DistributedAlgorithm selects the distributed path.
type DistributedAlgorithm int

const (
	RandGreedI DistributedAlgorithm = iota
	StreamingSieve
	StreamingThreeSieve
)

// Config is the full recognized configuration table, plus the ambient
// knobs (dataset location/shape, transport adapter, telemetry and
// result endpoints) a runnable deployment needs.
type Config struct {
	K                        int
	Epsilon                  float64
	Algorithm                Algorithm
	DistributedAlgorithm     DistributedAlgorithm
	Alpha                    float64
	ThreeSieveT              int
	Theta                    float64
	StopEarly                bool
	SendAllToReceiver        bool
	AdjacencyListColumnCount int
	// TotalColumns lets the coordinator reconstruct sparse rows off the
	// wire; it has no wire representation of its own.
	TotalColumns int

	// Ambient: dataset.
	DatasetPath   string
	DatasetFormat string // "dense-csv", "sparse-coo", "postgres"
	PostgresDSN   string
	NormalizeRows bool

	// Ambient: distributed topology.
	WorldSize int
	Rank      int

	// Ambient: transport.
	TransportAdapter string // "channel", "redis", "log"
	RedisAddr        string
	RedisStream      string
	RedisGroup       string

	// Ambient: observability.
	MetricsAddr string
	ResultAddr  string
	LogInterval int // seconds; 0 disables periodic telemetry logging
}

// Default returns a Config with the same defaults the original system
// documents: epsilon as a threshold floor of 0.01, alpha=1.0 (workers
// keep their full local share), theta=0.5 (balanced relevance/diversity).
func Default() Config {
	return Config{
		K:                10,
		Epsilon:          0.01,
		Algorithm:        Fast,
		Alpha:            1.0,
		ThreeSieveT:      2,
		Theta:            0.5,
		DatasetFormat:    "dense-csv",
		WorldSize:        1,
		TransportAdapter: "channel",
		RedisStream:      "repsub-frames",
		RedisGroup:       "repsub-coordinator",
	}
}

// Validate checks the recognized ranges: k>0, epsilon>0,
// algorithm/distributedAlgorithm within their enums, 0<alpha<=1, 0<theta<1.
func (c Config) Validate() error {
	if c.K <= 0 {
		return fmt.Errorf("config: k must be positive, got %d", c.K)
	}
	if c.Epsilon <= 0 {
		return fmt.Errorf("config: epsilon must be positive, got %v", c.Epsilon)
	}
	if c.Algorithm < Naive || c.Algorithm > Streaming {
		return fmt.Errorf("config: algorithm %d out of range [0,4]", c.Algorithm)
	}
	if c.DistributedAlgorithm < RandGreedI || c.DistributedAlgorithm > StreamingThreeSieve {
		return fmt.Errorf("config: distributedAlgorithm %d out of range [0,2]", c.DistributedAlgorithm)
	}
	if c.Alpha <= 0 || c.Alpha > 1 {
		return fmt.Errorf("config: alpha must be in (0,1], got %v", c.Alpha)
	}
	if c.Theta <= 0 || c.Theta >= 1 {
		return fmt.Errorf("config: theta must be in (0,1), got %v", c.Theta)
	}
	if c.WorldSize <= 0 {
		return fmt.Errorf("config: worldSize must be positive, got %d", c.WorldSize)
	}
	return nil
}

// LocalK returns floor(alpha*k), a worker's local seed share.
func (c Config) LocalK() int {
	return int(c.Alpha * float64(c.K))
}

// Selector builds the greedy.Selector named by Algorithm.
func (c Config) Selector() greedy.Selector {
	switch c.Algorithm {
	case Naive:
		return greedy.Naive{}
	case Lazy:
		return greedy.Lazy{}
	case LazyFast:
		return greedy.LazyFast{Epsilon: c.Epsilon}
	case Streaming:
		// Streaming centralized runs still need a local selector for
		// the worker-side greedy pass; Fast is the preferred default.
		return greedy.Fast{Epsilon: c.Epsilon}
	default:
		return greedy.Fast{Epsilon: c.Epsilon}
	}
}
