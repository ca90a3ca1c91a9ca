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
	"fmt"

	"repsub/internal/repsuberr"
	"repsub/pkg/row"
)

// EncodeBulk concatenates a worker's entire local subset into one message:
// [local-total-score, frame1, frame2, ...].
func EncodeBulk(kind Kind, localScore float64, rows []row.Row, globalIndices []int, marginals []float64) ([]float32, error) {
	if len(rows) != len(globalIndices) || len(rows) != len(marginals) {
		return nil, fmt.Errorf("%w: mismatched row/index/marginal counts", repsuberr.ErrInvariantViolation)
	}
	msg := []float32{float32(localScore)}
	for i, r := range rows {
		frame, err := Encode(kind, r, globalIndices[i], marginals[i])
		if err != nil {
			return nil, err
		}
		msg = append(msg, frame...)
	}
	return msg, nil
}

// DecodedBulk is one worker's decoded contribution to a RandGreedI gather.
type DecodedBulk struct {
	LocalScore float64
	Frames     []Decoded
}

// DecodeBulk reverses EncodeBulk by repeatedly finding the next sentinel
// and slicing off one frame at a time.
func DecodeBulk(kind Kind, msg []float32, totalColumns int) (DecodedBulk, error) {
	if len(msg) < 1 {
		return DecodedBulk{}, fmt.Errorf("%w: empty bulk message", repsuberr.ErrInputMalformed)
	}
	out := DecodedBulk{LocalScore: float64(msg[0])}
	rest := msg[1:]
	for len(rest) > 0 {
		end := -1
		for i, v := range rest {
			if v == EndOfFrameSentinel {
				end = i
				break
			}
		}
		if end < 0 {
			return DecodedBulk{}, fmt.Errorf("%w: bulk message missing terminating sentinel", repsuberr.ErrInvariantViolation)
		}
		frame := rest[:end+1]
		decoded, err := Decode(kind, frame, totalColumns)
		if err != nil {
			return DecodedBulk{}, err
		}
		out.Frames = append(out.Frames, decoded)
		rest = rest[end+1:]
	}
	return out, nil
}
