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

package relevance

import (
	"math"
	"testing"

	"repsub/pkg/row"
)

func newStore(t *testing.T, rows ...[]float32) *row.Store {
	t.Helper()
	rr := make([]row.Row, len(rows))
	for i, r := range rows {
		rr[i] = row.NewDenseRow(r)
	}
	s, err := row.NewFullyLoaded(rr)
	if err != nil {
		t.Fatalf("NewFullyLoaded: %v", err)
	}
	return s
}

func TestNaiveIsSymmetricAndBounded(t *testing.T) {
	store := newStore(t, []float32{1, 0, 0}, []float32{0, 1, 0}, []float32{1, 1, 0})
	calc := NewNaive(store)
	for i := 0; i < store.Len(); i++ {
		for j := 0; j < store.Len(); j++ {
			sij := calc.Get(i, j)
			sji := calc.Get(j, i)
			if sij != sji {
				t.Fatalf("Get(%d,%d)=%v != Get(%d,%d)=%v", i, j, sij, j, i, sji)
			}
			if sij < 0 {
				t.Fatalf("Get(%d,%d)=%v is negative", i, j, sij)
			}
		}
	}
}

func TestUserModeScalesByRelevance(t *testing.T) {
	store := newStore(t, []float32{1, 0}, []float32{1, 0})
	base := NewNaive(store)
	theta := 0.5 // alpha = 0.5
	um := NewUserMode(base, []float64{2, 2}, theta)

	got := um.Get(0, 1)
	s01 := float64(base.Get(0, 1))
	alpha := 0.5 * (theta / (1 - theta))
	want := s01 * math.Exp(alpha*2) * math.Exp(alpha*2)
	if math.Abs(float64(got)-want) > 1e-4 {
		t.Fatalf("UserMode.Get = %v, want %v", got, want)
	}
}

func TestMemoizedMatchesDelegate(t *testing.T) {
	store := newStore(t, []float32{1, 2}, []float32{3, 4})
	base := NewNaive(store)
	memo := NewMemoized(base)

	for i := 0; i < store.Len(); i++ {
		for j := 0; j < store.Len(); j++ {
			if memo.Get(i, j) != base.Get(i, j) {
				t.Fatalf("memoized Get(%d,%d) mismatch", i, j)
			}
			// second call should hit the cache and still match.
			if memo.Get(i, j) != base.Get(i, j) {
				t.Fatalf("memoized cache Get(%d,%d) mismatch on repeat", i, j)
			}
		}
	}
}
