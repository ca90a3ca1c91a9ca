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

package titrator

import (
	"repsub/pkg/candidate"
	"repsub/pkg/row"
	"repsub/pkg/subset"
)

// Titrator is the shared contract for SieveStreaming, ThreeSieve, and the
// LazyInit wrapper around either.
type Titrator interface {
	// ProcessQueue drains whatever is currently available on q and reports
	// whether the titrator is still willing to accept further seeds.
	ProcessQueue(q *candidate.Queue) bool

	// Finalize returns the best subset the titrator has assembled. When no
	// bucket ever exceeds score 0, it returns an empty subset rather than
	// a sentinel index.
	Finalize() subset.Subset

	// IsFull reports true only when Δ₀ is fixed and no bucket can accept
	// further rows; it must stay false while Δ₀ could still be revised.
	IsFull() bool
}

// selfDiag computes 1 + ⟨x,x⟩ for a lone candidate row: the same dₓ² a
// ThresholdBucket would compute if x were the first row inserted into an
// empty bucket. Titrator thresholds operate on row dot products plus the
// identity term rather than the relevance kernel, so this matches
// bucket.AttemptInsert's arithmetic exactly, keeping Δ₀ consistent with
// the marginals buckets actually report.
func selfDiag(r row.Row) float64 {
	return 1 + float64(r.DotProduct(r))
}
