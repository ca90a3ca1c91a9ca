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

// Streaming decorates a Mutable accumulator so every added row is also
// handed to onAdd, which a worker uses to emit a wire frame. The
// selector itself never knows it's being streamed.
type Streaming struct {
	*Mutable
	onAdd func(index int, marginalGain float64)
}

// NewStreaming wraps base, invoking onAdd for every row appended.
func NewStreaming(base *Mutable, onAdd func(index int, marginalGain float64)) *Streaming {
	return &Streaming{Mutable: base, onAdd: onAdd}
}

// AddRow appends to the underlying accumulator and notifies onAdd.
func (s *Streaming) AddRow(index int, marginalGain float64) {
	s.Mutable.AddRow(index, marginalGain)
	if s.onAdd != nil {
		s.onAdd(index, marginalGain)
	}
}
