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

package loader

import (
	"strings"
	"testing"

	"repsub/pkg/row"
)

func TestDenseCSVSourceParsesRows(t *testing.T) {
	src := NewDenseCSVSource(strings.NewReader("1,2,3\n4,5,6\n"))
	rows, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("len(rows) = %d, want 2", len(rows))
	}
	d := rows[0].(row.DenseRow)
	if d.Values[0] != 1 || d.Values[1] != 2 || d.Values[2] != 3 {
		t.Fatalf("row 0 = %v", d.Values)
	}
}

func TestDenseCSVSourceRejectsMalformedField(t *testing.T) {
	src := NewDenseCSVSource(strings.NewReader("1,x,3\n"))
	if _, err := src.Load(); err == nil {
		t.Fatal("expected error for non-numeric field")
	}
}

func TestSparseCOOSourceDefaultsMissingValue(t *testing.T) {
	src := NewSparseCOOSource(strings.NewReader("0 2\n0 5 3.0\n"), 10)
	rows, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	s := rows[0].(row.SparseRow)
	if s.Values[2] != 1.0 {
		t.Fatalf("missing value did not default to 1.0: %v", s.Values[2])
	}
	if s.Values[5] != 3.0 {
		t.Fatalf("explicit value not preserved: %v", s.Values[5])
	}
}

func TestSparseCOOSourceEmitsEmptyRowsForGaps(t *testing.T) {
	src := NewSparseCOOSource(strings.NewReader("0 1 1.0\n2 3 1.0\n"), 10)
	rows, err := src.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("len(rows) = %d, want 3 (rows 0,1,2 with row 1 empty)", len(rows))
	}
	if rows[1].(row.SparseRow).Values == nil || len(rows[1].(row.SparseRow).Values) != 0 {
		t.Fatalf("gap row should be empty, got %v", rows[1])
	}
}

func TestSparseCOOSourceRejectsBacktrackingRowIndex(t *testing.T) {
	src := NewSparseCOOSource(strings.NewReader("2 0 1.0\n1 0 1.0\n"), 10)
	if _, err := src.Load(); err == nil {
		t.Fatal("expected error for non-monotone row index")
	}
}

type stubSource struct {
	rows []row.Row
}

func (s stubSource) Load() ([]row.Row, error) { return s.rows, nil }

func TestNormalizingSourceL2Normalizes(t *testing.T) {
	delegate := stubSource{rows: []row.Row{row.NewDenseRow([]float32{3, 4})}}
	n := &NormalizingSource{Delegate: delegate}
	rows, err := n.Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	d := rows[0].(row.DenseRow)
	if d.Values[0] != 0.6 || d.Values[1] != 0.8 {
		t.Fatalf("normalized row = %v, want [0.6, 0.8]", d.Values)
	}
}
