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

// Package loader reads datasets into row.Row slices: dense CSV, sparse
// COO triples, and a Postgres-backed source, plus an optional
// normalization decorator.
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

// Source produces the full set of rows for a dataset in one call. Large
// datasets are expected to be sharded upstream (internal/worker), not
// streamed row-by-row here.
type Source interface {
	Load() ([]row.Row, error)
}

// DenseCSVSource reads one row per line, comma-delimited floats.
type DenseCSVSource struct {
	r io.Reader
}

// NewDenseCSVSource wraps r as a dense CSV source.
func NewDenseCSVSource(r io.Reader) *DenseCSVSource {
	return &DenseCSVSource{r: r}
}

// Load implements Source.
func (s *DenseCSVSource) Load() ([]row.Row, error) {
	scanner := bufio.NewScanner(s.r)
	scanner.Buffer(make([]byte, 64*1024), 16*1024*1024)

	var rows []row.Row
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		values := make([]float32, len(fields))
		for i, f := range fields {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
			if err != nil {
				return nil, fmt.Errorf("%w: line %d field %d: %v", repsuberr.ErrInputMalformed, lineNo, i, err)
			}
			values[i] = float32(v)
		}
		rows = append(rows, row.NewDenseRow(values))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", repsuberr.ErrInputMalformed, err)
	}
	return rows, nil
}
