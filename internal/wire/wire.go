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

// Package wire encodes and decodes the candidate-row frames that move
// between a worker and the coordinator: payload floats followed by three
// control floats, [payload..., local-marginal, global-index,
// END_OF_FRAME_SENTINEL]. Dense rows carry the row's values directly;
// sparse rows carry flattened (index, value) pairs.
package wire

import (
	"fmt"

	"repsub/internal/repsuberr"
	"repsub/pkg/row"
)

// EndOfFrameSentinel terminates every wire frame's payload.
const EndOfFrameSentinel float32 = -1

// Kind selects how the payload floats preceding the control trailer are
// interpreted.
type Kind int

const (
	Dense Kind = iota
	Sparse
)

// Encode builds the payload+trailer float slice for one candidate row.
// localMarginal is the row's local marginal gain and globalIndex its
// position in the sender's global numbering.
func Encode(kind Kind, r row.Row, globalIndex int, localMarginal float64) ([]float32, error) {
	var payload []float32
	switch kind {
	case Dense:
		d, ok := r.(row.DenseRow)
		if !ok {
			return nil, fmt.Errorf("%w: encode dense frame from non-dense row", repsuberr.ErrInvariantViolation)
		}
		payload = append(payload, d.Values...)
	case Sparse:
		s, ok := r.(row.SparseRow)
		if !ok {
			return nil, fmt.Errorf("%w: encode sparse frame from non-sparse row", repsuberr.ErrInvariantViolation)
		}
		for idx, v := range s.Values {
			payload = append(payload, float32(idx), v)
		}
	default:
		return nil, fmt.Errorf("%w: unknown row kind %d", repsuberr.ErrInvariantViolation, kind)
	}
	payload = append(payload, float32(localMarginal), float32(globalIndex), EndOfFrameSentinel)
	return payload, nil
}

// Decoded is one frame's extracted contents, ready for CandidateSeed
// construction.
type Decoded struct {
	Row           row.Row
	GlobalIndex   int
	LocalMarginal float64
}

// Decode reverses Encode: it scans from the tail for the sentinel, reads
// the two preceding control floats, and reconstructs the row from the
// remaining payload prefix according to kind. totalColumns is required to
// size a Sparse row (its TotalColumns is not itself on the wire).
func Decode(kind Kind, payload []float32, totalColumns int) (Decoded, error) {
	n := len(payload)
	if n < 3 {
		return Decoded{}, fmt.Errorf("%w: frame too short (%d floats)", repsuberr.ErrInputMalformed, n)
	}
	if payload[n-1] != EndOfFrameSentinel {
		return Decoded{}, fmt.Errorf("%w: missing end-of-frame sentinel", repsuberr.ErrInvariantViolation)
	}
	globalIndex := int(payload[n-2])
	localMarginal := float64(payload[n-3])
	body := payload[:n-3]

	switch kind {
	case Dense:
		values := make([]float32, len(body))
		copy(values, body)
		return Decoded{Row: row.NewDenseRow(values), GlobalIndex: globalIndex, LocalMarginal: localMarginal}, nil
	case Sparse:
		if len(body)%2 != 0 {
			return Decoded{}, fmt.Errorf("%w: odd-length sparse payload (%d floats)", repsuberr.ErrInvariantViolation, len(body))
		}
		values := make(map[int]float32, len(body)/2)
		for i := 0; i < len(body); i += 2 {
			values[int(body[i])] = body[i+1]
		}
		return Decoded{Row: row.NewSparseRow(values, totalColumns), GlobalIndex: globalIndex, LocalMarginal: localMarginal}, nil
	default:
		return Decoded{}, fmt.Errorf("%w: unknown row kind %d", repsuberr.ErrInvariantViolation, kind)
	}
}
