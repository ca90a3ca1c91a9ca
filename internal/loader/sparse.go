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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"repsub/internal/repsuberr"
	"repsub/pkg/row"
)

// SparseCOOSource reads one "row col value" triple per line,
// whitespace-delimited. value is optional and defaults to 1.0. Row
// indices must be non-decreasing across the file; a decrease is fatal.
// Gaps in the row-index sequence produce empty rows so every row index
// up to the maximum seen has a slot in the output.
type SparseCOOSource struct {
	r            io.Reader
	totalColumns int
}

// NewSparseCOOSource wraps r, with totalColumns fixing the uniform
// column count C every produced row reports via Size().
func NewSparseCOOSource(r io.Reader, totalColumns int) *SparseCOOSource {
	return &SparseCOOSource{r: r, totalColumns: totalColumns}
}

// Load implements Source.
func (s *SparseCOOSource) Load() ([]row.Row, error) {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var rows []row.Row
	currentRow := -1
	var current map[int]float32
	lineNo := 0

	flush := func() {
		if current != nil {
			rows = append(rows, row.NewSparseRow(current, s.totalColumns))
		}
	}

	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("%w: line %d: need at least row and col", repsuberr.ErrInputMalformed, lineNo)
		}
		rowIdx, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad row index: %v", repsuberr.ErrInputMalformed, lineNo, err)
		}
		colIdx, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: bad col index: %v", repsuberr.ErrInputMalformed, lineNo, err)
		}
		value := float32(1.0)
		if len(fields) >= 3 {
			v, err := strconv.ParseFloat(fields[2], 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d: bad value: %v", repsuberr.ErrInputMalformed, lineNo, err)
			}
			value = float32(v)
		}

		if rowIdx < currentRow {
			return nil, fmt.Errorf("%w: line %d: cannot backtrack (row %d after row %d)", repsuberr.ErrInvariantViolation, lineNo, rowIdx, currentRow)
		}
		if rowIdx > currentRow {
			flush()
			for gap := currentRow + 1; gap < rowIdx; gap++ {
				rows = append(rows, row.NewSparseRow(map[int]float32{}, s.totalColumns))
			}
			currentRow = rowIdx
			current = make(map[int]float32)
		}
		current[colIdx] = value
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", repsuberr.ErrInputMalformed, err)
	}
	flush()
	return rows, nil
}

// NewAdjacencyListSource is a SparseCOOSource with totalColumns pinned to
// a fixed fan-out, the adjacencyListColumnCount option.
func NewAdjacencyListSource(r io.Reader, fanOut int) *SparseCOOSource {
	return NewSparseCOOSource(r, fanOut)
}
