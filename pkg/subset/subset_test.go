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

package subset

import "testing"

func TestMutableAddRowAccumulatesScore(t *testing.T) {
	m := NewMutable()
	m.AddRow(3, 1.5)
	m.AddRow(7, 2.5)

	if m.Size() != 2 {
		t.Fatalf("Size() = %d, want 2", m.Size())
	}
	if m.Score() != 4.0 {
		t.Fatalf("Score() = %v, want 4.0", m.Score())
	}
	if m.RowAt(0) != 3 || m.RowAt(1) != 7 {
		t.Fatalf("unexpected row order: %v", m.Rows())
	}
}

func TestNewMutableFromReportedUsesGivenScore(t *testing.T) {
	m := NewMutableFromReported([]int{4, 9, 12}, 7.25)

	if m.Size() != 3 {
		t.Fatalf("Size() = %d, want 3", m.Size())
	}
	if m.Score() != 7.25 {
		t.Fatalf("Score() = %v, want 7.25", m.Score())
	}
	if m.RowAt(0) != 4 || m.RowAt(1) != 9 || m.RowAt(2) != 12 {
		t.Fatalf("unexpected row order: %v", m.Rows())
	}
}

func TestTranslatedSubsetMapsIndices(t *testing.T) {
	base := NewMutable()
	base.AddRow(0, 1.0)
	base.AddRow(1, 2.0)

	toGlobal := map[int]int{0: 100, 1: 200}
	translated := NewTranslatedSubset(base, func(local int) int { return toGlobal[local] })

	if translated.RowAt(0) != 100 || translated.RowAt(1) != 200 {
		t.Fatalf("unexpected translated rows: %v", translated.Rows())
	}
	if translated.Score() != base.Score() {
		t.Fatalf("Score() = %v, want %v", translated.Score(), base.Score())
	}
}

func TestStreamingNotifiesOnAdd(t *testing.T) {
	var seen [][2]float64
	base := NewMutable()
	s := NewStreaming(base, func(index int, gain float64) {
		seen = append(seen, [2]float64{float64(index), gain})
	})

	s.AddRow(5, 1.25)
	s.AddRow(6, 0.75)

	if len(seen) != 2 {
		t.Fatalf("onAdd called %d times, want 2", len(seen))
	}
	if seen[0] != [2]float64{5, 1.25} || seen[1] != [2]float64{6, 0.75} {
		t.Fatalf("unexpected onAdd calls: %v", seen)
	}
	if base.Score() != 2.0 {
		t.Fatalf("underlying Score() = %v, want 2.0", base.Score())
	}
}

func TestUserSubsetPreservesDelegate(t *testing.T) {
	base := NewMutable()
	base.AddRow(1, 1.0)
	us := NewUserSubset(base, "user-42")
	if us.UserID != "user-42" {
		t.Fatalf("UserID = %q, want user-42", us.UserID)
	}
	if us.Size() != 1 || us.Score() != 1.0 {
		t.Fatalf("UserSubset did not delegate correctly: size=%d score=%v", us.Size(), us.Score())
	}
}

func TestToSnapshot(t *testing.T) {
	base := NewMutable()
	base.AddRow(2, 3.5)
	snap := ToSnapshot(base)
	if len(snap.Rows) != 1 || snap.Rows[0] != 2 {
		t.Fatalf("Snapshot.Rows = %v", snap.Rows)
	}
	if snap.TotalCoverage != 3.5 {
		t.Fatalf("Snapshot.TotalCoverage = %v, want 3.5", snap.TotalCoverage)
	}
}
