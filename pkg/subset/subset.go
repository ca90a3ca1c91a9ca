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

// Package subset accumulates the rows a selector or titrator has chosen: an
// ordered sequence of global row indices plus a cumulative, monotone
// non-decreasing log-determinant score.
package subset

// Subset is the read-only view shared by every consumer: JSON output,
// score comparisons between selectors, and titrator "best bucket" picks.
type Subset interface {
	Size() int
	Score() float64
	RowAt(i int) int
	Rows() []int
}

// Mutable accumulates rows as a selector or bucket discovers them. Score
// only ever increases: addRow-with-marginal-gain is the sole mutator.
type Mutable struct {
	rows  []int
	score float64
}

// NewMutable returns an empty accumulator.
func NewMutable() *Mutable {
	return &Mutable{}
}

// NewMutableFrom seeds an accumulator from an existing Subset, e.g. a
// warm-start initial subset a selector should extend rather than replace.
// A nil base returns an empty accumulator.
func NewMutableFrom(base Subset) *Mutable {
	m := &Mutable{}
	if base == nil {
		return m
	}
	m.rows = append(m.rows, base.Rows()...)
	m.score = base.Score()
	return m
}

// NewMutableFromReported reconstructs an accumulator from a list of row
// indices and a score reported by whoever assembled them (e.g. a worker's
// wire-transmitted total), rather than recomputing the score by summing
// individual marginals.
func NewMutableFromReported(rows []int, score float64) *Mutable {
	m := &Mutable{score: score}
	m.rows = append(m.rows, rows...)
	return m
}

// AddRow appends index and increments the running score by marginalGain.
func (m *Mutable) AddRow(index int, marginalGain float64) {
	m.rows = append(m.rows, index)
	m.score += marginalGain
}

// Size implements Subset.
func (m *Mutable) Size() int { return len(m.rows) }

// Score implements Subset.
func (m *Mutable) Score() float64 { return m.score }

// RowAt implements Subset.
func (m *Mutable) RowAt(i int) int { return m.rows[i] }

// Rows implements Subset, returning a copy safe for the caller to keep.
func (m *Mutable) Rows() []int {
	out := make([]int, len(m.rows))
	copy(out, m.rows)
	return out
}

// Snapshot is the JSON-serializable form of a Subset for the output
// document: its rows plus its total coverage score.
type Snapshot struct {
	Rows          []int   `json:"rows"`
	TotalCoverage float64 `json:"totalCoverage"`
}

// ToSnapshot converts any Subset into its JSON-serializable form.
func ToSnapshot(s Subset) Snapshot {
	return Snapshot{Rows: s.Rows(), TotalCoverage: s.Score()}
}

// UserSubset decorates a Subset with the user/test id it was computed for,
// used by the (out-of-core) user-mode personalization scoring pipeline.
type UserSubset struct {
	Subset
	UserID string
}

// NewUserSubset attaches userID to base.
func NewUserSubset(base Subset, userID string) *UserSubset {
	return &UserSubset{Subset: base, UserID: userID}
}

// TranslatedSubset decorates a Subset whose indices are local to one
// worker's shard, translating each RowAt/Rows call through a
// local->global lookup before returning it.
type TranslatedSubset struct {
	base          Subset
	localToGlobal func(local int) int
}

// NewTranslatedSubset wraps base, translating indices through toGlobal.
func NewTranslatedSubset(base Subset, toGlobal func(local int) int) *TranslatedSubset {
	return &TranslatedSubset{base: base, localToGlobal: toGlobal}
}

// Size implements Subset.
func (t *TranslatedSubset) Size() int { return t.base.Size() }

// Score implements Subset.
func (t *TranslatedSubset) Score() float64 { return t.base.Score() }

// RowAt implements Subset, translating the local index to global.
func (t *TranslatedSubset) RowAt(i int) int { return t.localToGlobal(t.base.RowAt(i)) }

// Rows implements Subset, translating every local index to global.
func (t *TranslatedSubset) Rows() []int {
	local := t.base.Rows()
	out := make([]int, len(local))
	for i, l := range local {
		out[i] = t.localToGlobal(l)
	}
	return out
}
