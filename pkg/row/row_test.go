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
	"errors"
	"math"
	"testing"

	"repsub/internal/repsuberr"
)

func TestDenseDotProduct(t *testing.T) {
	a := NewDenseRow([]float32{1, 2, 3})
	b := NewDenseRow([]float32{4, 5, 6})
	got := a.DotProduct(b)
	want := float32(1*4 + 2*5 + 3*6)
	if got != want {
		t.Fatalf("DotProduct = %v, want %v", got, want)
	}
}

func TestDenseDotProductTruncatesToMinLength(t *testing.T) {
	a := NewDenseRow([]float32{1, 2, 3, 4})
	b := NewDenseRow([]float32{10, 10})
	got := a.DotProduct(b)
	want := float32(1*10 + 2*10)
	if got != want {
		t.Fatalf("DotProduct = %v, want %v", got, want)
	}
}

func TestSparseDotProductIntersectsByKey(t *testing.T) {
	a := NewSparseRow(map[int]float32{0: 1, 2: 3, 5: 7}, 10)
	b := NewSparseRow(map[int]float32{2: 2, 5: 1, 9: 100}, 10)
	got := a.DotProduct(b)
	want := float32(3*2 + 7*1)
	if math.Abs(float64(got-want)) > 1e-6 {
		t.Fatalf("DotProduct = %v, want %v", got, want)
	}
}

func TestSparseDenseDotProduct(t *testing.T) {
	s := NewSparseRow(map[int]float32{0: 1, 3: 5}, 4)
	d := NewDenseRow([]float32{2, 2, 2, 2})
	got := s.DotProduct(d)
	want := float32(1*2 + 5*2)
	if got != want {
		t.Fatalf("DotProduct = %v, want %v", got, want)
	}
	// symmetric from the dense side too.
	got2 := d.DotProduct(s)
	if got2 != want {
		t.Fatalf("DotProduct (dense first) = %v, want %v", got2, want)
	}
}

func TestNewFullyLoadedRejectsNonUniformColumns(t *testing.T) {
	rows := []Row{
		NewDenseRow([]float32{1, 2, 3}),
		NewDenseRow([]float32{1, 2}),
	}
	_, err := NewFullyLoaded(rows)
	if err == nil {
		t.Fatal("expected error for mismatched column count")
	}
	if !errors.Is(err, repsuberr.ErrInvariantViolation) {
		t.Fatalf("expected ErrInvariantViolation, got %v", err)
	}
}

func TestNewSegmentedMapsLocalToGlobal(t *testing.T) {
	rows := []Row{NewDenseRow([]float32{1}), NewDenseRow([]float32{2})}
	store, err := NewSegmented(rows, []int{7, 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if store.GlobalIndex(0) != 7 || store.GlobalIndex(1) != 9 {
		t.Fatalf("unexpected global indices: %d, %d", store.GlobalIndex(0), store.GlobalIndex(1))
	}
	if store.Columns() != 1 {
		t.Fatalf("Columns() = %d, want 1", store.Columns())
	}
}

func TestFullyLoadedIdentityMapping(t *testing.T) {
	rows := []Row{NewDenseRow([]float32{1}), NewDenseRow([]float32{2}), NewDenseRow([]float32{3})}
	store, err := NewFullyLoaded(rows)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < store.Len(); i++ {
		if store.GlobalIndex(i) != i {
			t.Fatalf("GlobalIndex(%d) = %d, want %d", i, store.GlobalIndex(i), i)
		}
	}
}
