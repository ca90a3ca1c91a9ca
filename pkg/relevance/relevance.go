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

// Package relevance computes pairwise similarity between rows of a dataset,
// the s(i,j) term the kernel matrix regularizes into a PSD Gram matrix.
package relevance

import (
	"math"

	"repsub/pkg/row"
)

// Calculator computes the pairwise similarity s(i,j). Every implementation
// in this package is symmetric; the range of s depends on the rows (see
// Naive).
type Calculator interface {
	Get(i, j int) float32
}

// Naive is the default calculator: (1 + rowI . rowJ) / 2. The result lies
// in [0,1] for unit-length rows; other rows can give values outside it.
type Naive struct {
	Store *row.Store
}

// NewNaive builds a Naive calculator over store.
func NewNaive(store *row.Store) *Naive {
	return &Naive{Store: store}
}

// Get implements Calculator.
func (n *Naive) Get(i, j int) float32 {
	return (1 + n.Store.RowAt(i).DotProduct(n.Store.RowAt(j))) / 2
}

// UserMode wraps a delegate calculator and multiplies by
// exp(alpha*ru[i])*exp(alpha*ru[j]), where alpha = 0.5*theta/(1-theta).
// theta must be in (0,1).
type UserMode struct {
	Delegate Calculator
	Ru       []float64
	Alpha    float64
}

// NewUserMode builds a UserMode calculator. theta is the user-supplied
// relevance/diversity trade-off in (0,1).
func NewUserMode(delegate Calculator, ru []float64, theta float64) *UserMode {
	return &UserMode{Delegate: delegate, Ru: ru, Alpha: alphaFromTheta(theta)}
}

func alphaFromTheta(theta float64) float64 {
	return 0.5 * (theta / (1 - theta))
}

// Get implements Calculator.
func (u *UserMode) Get(i, j int) float32 {
	sij := u.Delegate.Get(i, j)
	ri := math.Exp(u.Alpha * u.Ru[i])
	rj := math.Exp(u.Alpha * u.Ru[j])
	return float32(float64(sij) * ri * rj)
}

// Memoized caches Get(i,j) results behind an unordered-pair key. Not
// thread-safe; callers needing concurrent access should wrap it externally,
// the same caveat the original source carries ("TODO: needs to be
// threadsafe").
type Memoized struct {
	Delegate Calculator
	memo     map[[2]int]float32
}

// NewMemoized builds a Memoized calculator wrapping delegate.
func NewMemoized(delegate Calculator) *Memoized {
	return &Memoized{Delegate: delegate, memo: make(map[[2]int]float32)}
}

// Get implements Calculator.
func (m *Memoized) Get(i, j int) float32 {
	key := [2]int{i, j}
	if i > j {
		key = [2]int{j, i}
	}
	if v, ok := m.memo[key]; ok {
		return v
	}
	v := m.Delegate.Get(i, j)
	m.memo[key] = v
	return v
}
