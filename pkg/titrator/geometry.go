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

// Package titrator implements the SieveStreaming and ThreeSieve O(1)-pass
// (1/2-eps)-approximation schemes on top of a threshold-bucket ladder, plus
// the lazy-initializing wrapper that discovers Delta-zero from the stream
// itself when the caller did not supply one upfront.
package titrator

import "math"

// numberOfBuckets returns B, the bucket-ladder width. When
// deltaZeroKnown is false the ladder is sized for 2k instead of k, leaving
// headroom for Δ₀ to grow before any bucket must be dropped.
func numberOfBuckets(k int, epsilon float64, deltaZeroKnown bool) int {
	n := k
	if !deltaZeroKnown {
		n = 2 * k
	}
	return int(math.Ceil(logBase(1+epsilon, float64(n)))) + 1
}

// thresholdForBucket returns τᵢ = (1+ε)^(i + ceil(log_{1+ε} Δ₀)).
func thresholdForBucket(i int, epsilon, deltaZero float64) float64 {
	offset := math.Ceil(logBase(1+epsilon, deltaZero))
	return math.Pow(1+epsilon, float64(i)+offset)
}

func logBase(base, x float64) float64 {
	return math.Log(x) / math.Log(base)
}

// deltaFromScore converts a single-row relevance score s into the δ =
// 2*log(sqrt(s)) bound used to revise Δ₀.
func deltaFromScore(s float64) float64 {
	return 2 * math.Log(math.Sqrt(s))
}
