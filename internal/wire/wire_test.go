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

package wire

import (
	"testing"

	"repsub/pkg/row"
)

func TestEncodeDecodeDenseRoundTrip(t *testing.T) {
	r := row.NewDenseRow([]float32{1, 2, 3})
	frame, err := Encode(Dense, r, 7, 0.5)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	want := []float32{1, 2, 3, 0.5, 7, EndOfFrameSentinel}
	if len(frame) != len(want) {
		t.Fatalf("frame length = %d, want %d", len(frame), len(want))
	}
	for i := range want {
		if frame[i] != want[i] {
			t.Fatalf("frame[%d] = %v, want %v", i, frame[i], want[i])
		}
	}

	decoded, err := Decode(Dense, frame, 3)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.GlobalIndex != 7 || decoded.LocalMarginal != 0.5 {
		t.Fatalf("decoded control floats = %+v", decoded)
	}
	dr, ok := decoded.Row.(row.DenseRow)
	if !ok {
		t.Fatalf("decoded row is not DenseRow: %T", decoded.Row)
	}
	for i, v := range []float32{1, 2, 3} {
		if dr.Values[i] != v {
			t.Fatalf("decoded row[%d] = %v, want %v", i, dr.Values[i], v)
		}
	}
}

func TestEncodeDecodeSparseRoundTrip(t *testing.T) {
	r := row.NewSparseRow(map[int]float32{2: 5, 9: 1}, 20)
	frame, err := Encode(Sparse, r, 3, 1.25)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(Sparse, frame, 20)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if decoded.GlobalIndex != 3 || decoded.LocalMarginal != 1.25 {
		t.Fatalf("decoded control floats = %+v", decoded)
	}
	sr, ok := decoded.Row.(row.SparseRow)
	if !ok {
		t.Fatalf("decoded row is not SparseRow: %T", decoded.Row)
	}
	if sr.Values[2] != 5 || sr.Values[9] != 1 || len(sr.Values) != 2 {
		t.Fatalf("decoded sparse values = %+v", sr.Values)
	}
}

func TestDecodeRejectsMissingSentinel(t *testing.T) {
	_, err := Decode(Dense, []float32{1, 2, 0.5, 7, 0}, 2)
	if err == nil {
		t.Fatal("expected error for missing sentinel")
	}
}

func TestDecodeRejectsOddLengthSparsePayload(t *testing.T) {
	frame := []float32{2, 5, 9, 0.1, 4, EndOfFrameSentinel}
	_, err := Decode(Sparse, frame, 20)
	if err == nil {
		t.Fatal("expected error for odd-length sparse payload")
	}
}

func TestEncodeDecodeBulkRoundTrip(t *testing.T) {
	rows := []row.Row{
		row.NewDenseRow([]float32{1, 2, 3}),
		row.NewDenseRow([]float32{4, 5, 6}),
	}
	msg, err := EncodeBulk(Dense, 9.5, rows, []int{0, 2}, []float64{1.0, 0.5})
	if err != nil {
		t.Fatalf("EncodeBulk: %v", err)
	}
	bulk, err := DecodeBulk(Dense, msg, 3)
	if err != nil {
		t.Fatalf("DecodeBulk: %v", err)
	}
	if bulk.LocalScore != 9.5 {
		t.Fatalf("LocalScore = %v, want 9.5", bulk.LocalScore)
	}
	if len(bulk.Frames) != 2 {
		t.Fatalf("len(Frames) = %d, want 2", len(bulk.Frames))
	}
	if bulk.Frames[0].GlobalIndex != 0 || bulk.Frames[1].GlobalIndex != 2 {
		t.Fatalf("frame global indices = %d, %d", bulk.Frames[0].GlobalIndex, bulk.Frames[1].GlobalIndex)
	}
}
