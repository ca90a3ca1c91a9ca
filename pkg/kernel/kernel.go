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

// Package kernel provides the PSD kernel matrix K[i,j] = s(i,j), regularized
// on the diagonal as K[i,i] = s(i,i) + 1. It lives for exactly one selector
// call. The greedy selectors compute the same entries directly from a
// relevance.Calculator, and threshold buckets work from row dot products;
// neither goes through this package.
package kernel

import "repsub/pkg/relevance"

// Matrix exposes the kernel entries and the maintained diagonal.
type Matrix interface {
	// Get returns K[j,i].
	Get(j, i int) float32

	// Diagonals returns K[i,i] for i in [0,n).
	Diagonals() []float32
}

// Naive eagerly materializes the full n x n matrix. O(n^2) memory, O(n^2)
// time up front, O(1) per Get after that.
type Naive struct {
	n      int
	values [][]float32
}

// NewNaive builds a Naive kernel matrix over n rows using calc for s(i,j).
func NewNaive(n int, calc relevance.Calculator) *Naive {
	values := make([][]float32, n)
	for j := 0; j < n; j++ {
		values[j] = make([]float32, n)
	}
	for j := 0; j < n; j++ {
		for i := j; i < n; i++ {
			v := calc.Get(j, i)
			if j == i {
				v++
			}
			values[j][i] = v
			values[i][j] = v
		}
	}
	return &Naive{n: n, values: values}
}

// Get implements Matrix.
func (m *Naive) Get(j, i int) float32 { return m.values[j][i] }

// Diagonals implements Matrix.
func (m *Naive) Diagonals() []float32 {
	d := make([]float32, m.n)
	for i := range d {
		d[i] = m.values[i][i]
	}
	return d
}

// Lazy memoizes K[i,j] on first access instead of precomputing everything.
// Cheaper to build when a selector only ever touches a subset of entries
// (e.g. the Lazy/CELF selector), at the cost of a per-access map lookup.
type Lazy struct {
	n     int
	calc  relevance.Calculator
	cache map[[2]int]float32
}

// NewLazy builds a Lazy kernel matrix over n rows using calc for s(i,j).
func NewLazy(n int, calc relevance.Calculator) *Lazy {
	return &Lazy{n: n, calc: calc, cache: make(map[[2]int]float32)}
}

func lazyKey(j, i int) [2]int {
	if j <= i {
		return [2]int{j, i}
	}
	return [2]int{i, j}
}

// Get implements Matrix.
func (m *Lazy) Get(j, i int) float32 {
	key := lazyKey(j, i)
	if v, ok := m.cache[key]; ok {
		return v
	}
	v := m.calc.Get(j, i)
	if j == i {
		v++
	}
	m.cache[key] = v
	return v
}

// Diagonals implements Matrix.
func (m *Lazy) Diagonals() []float32 {
	d := make([]float32, m.n)
	for i := range d {
		d[i] = m.Get(i, i)
	}
	return d
}
