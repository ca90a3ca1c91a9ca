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

// Package worker runs one shard's local greedy selection and streams or
// bulk-ships its picks to the coordinator over a transport.Sender.
package worker

import (
	"hash/fnv"
	"strconv"

	"github.com/dgryski/go-rendezvous"
)

// ShardAssigner maps a global row index to the node name responsible for
// loading and selecting over it, partitioning the dataset across W
// workers. Rendezvous hashing keeps each row's assignment stable as
// workers join or leave, instead of a modulo partition that reshuffles
// every row whenever the world size changes.
type ShardAssigner struct {
	r *rendezvous.Rendezvous
}

// NewShardAssigner builds an assigner over nodes, named by their rank as
// decimal strings "0".."n-1".
func NewShardAssigner(worldSize int) *ShardAssigner {
	nodes := make([]string, worldSize)
	for i := range nodes {
		nodes[i] = strconv.Itoa(i)
	}
	return &ShardAssigner{r: rendezvous.New(nodes, hashNode)}
}

// NodeFor returns the node name owning globalIndex.
func (s *ShardAssigner) NodeFor(globalIndex int) string {
	return s.r.Lookup(strconv.Itoa(globalIndex))
}

// RankFor returns the worker rank owning globalIndex.
func (s *ShardAssigner) RankFor(globalIndex int) int {
	rank, err := strconv.Atoi(s.NodeFor(globalIndex))
	if err != nil {
		return 0
	}
	return rank
}

// LocalIndices returns, in ascending order, the global indices assigned to
// rank out of [0,totalRows).
func (s *ShardAssigner) LocalIndices(rank, totalRows int) []int {
	var out []int
	for i := 0; i < totalRows; i++ {
		if s.RankFor(i) == rank {
			out = append(out, i)
		}
	}
	return out
}

func hashNode(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
