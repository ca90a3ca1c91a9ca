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

package row

import (
	"fmt"

	"repsub/internal/repsuberr"
)

// Store holds an ordered sequence of rows plus a local-index -> global-index
// mapping. It is immutable once built and safe to share across goroutines
// for read access.
type Store struct {
	rows          []Row
	localToGlobal []int
	columns       int
}

// NewFullyLoaded builds a Store where every row lives on this host and
// local index equals global index.
func NewFullyLoaded(rows []Row) (*Store, error) {
	columns, err := uniformColumns(rows)
	if err != nil {
		return nil, err
	}
	localToGlobal := make([]int, len(rows))
	for i := range localToGlobal {
		localToGlobal[i] = i
	}
	return &Store{rows: rows, localToGlobal: localToGlobal, columns: columns}, nil
}

// NewSegmented builds a Store for one worker's shard: rows plus the explicit
// local->global indices assigned to this rank by the rank-assignment table.
func NewSegmented(rows []Row, globalIndices []int) (*Store, error) {
	if len(rows) != len(globalIndices) {
		return nil, fmt.Errorf("%w: %d rows but %d global indices", repsuberr.ErrInvariantViolation, len(rows), len(globalIndices))
	}
	columns, err := uniformColumns(rows)
	if err != nil {
		return nil, err
	}
	localToGlobal := append([]int(nil), globalIndices...)
	return &Store{rows: rows, localToGlobal: localToGlobal, columns: columns}, nil
}

// NewReceived builds a Store out of rows reconstructed from wire frames,
// carrying the sender-origin global indices they arrived with.
func NewReceived(rows []Row, globalIndices []int) (*Store, error) {
	return NewSegmented(rows, globalIndices)
}

// Len returns the number of rows held locally.
func (s *Store) Len() int { return len(s.rows) }

// Columns returns C, uniform across every row in the store.
func (s *Store) Columns() int { return s.columns }

// RowAt returns the row at local index i.
func (s *Store) RowAt(i int) Row { return s.rows[i] }

// GlobalIndex maps a local index to its global row index.
func (s *Store) GlobalIndex(localIndex int) int { return s.localToGlobal[localIndex] }

// LocalIndexOf reverses GlobalIndex, used when a selector must exclude an
// already-selected global index (e.g. a warm-start initial subset) from its
// local candidate scan. ok is false if global isn't held by this store.
func (s *Store) LocalIndexOf(global int) (int, bool) {
	for local, g := range s.localToGlobal {
		if g == global {
			return local, true
		}
	}
	return 0, false
}

// Rows exposes the underlying slice for iteration. Callers must not mutate it.
func (s *Store) Rows() []Row { return s.rows }

func uniformColumns(rows []Row) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	c := rows[0].Size()
	for i, r := range rows[1:] {
		if r.Size() != c {
			return 0, fmt.Errorf("%w: row %d has %d columns, expected %d", repsuberr.ErrInvariantViolation, i+1, r.Size(), c)
		}
	}
	return c, nil
}
