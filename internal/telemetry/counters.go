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

// Package telemetry provides opt-in, low-overhead metrics for the
// coordinator's receive path: frames received, bucket-ladder
// reorganizations, and titrator accept/reject decisions. The Observe*
// functions are no-ops when the module is disabled, safe to call from
// the poll loop's hot path; the Record* functions below always count.
package telemetry

import "sync/atomic"

var (
	framesReceived       atomic.Int64
	bucketsReorganized   atomic.Int64
	titratorAccepts      atomic.Int64
	titratorRejects      atomic.Int64
)

// RecordFrame counts one decoded frame reaching the consumer.
func RecordFrame() {
	framesReceived.Add(1)
}

// RecordBucketReorganization counts one ladder rebuild triggered by a Δ₀
// revision.
func RecordBucketReorganization() {
	bucketsReorganized.Add(1)
}

// RecordTitratorDecision counts one bucket's accept/reject verdict on a
// candidate seed.
func RecordTitratorDecision(accepted bool) {
	if accepted {
		titratorAccepts.Add(1)
		return
	}
	titratorRejects.Add(1)
}

// getEventTotals snapshots the raw counters; used by the exporter loop
// and by tests.
func getEventTotals() (frames, reorgs, accepts, rejects int64) {
	return framesReceived.Load(), bucketsReorganized.Load(), titratorAccepts.Load(), titratorRejects.Load()
}

// resetEventTotals zeroes every counter. Intended for tests only.
func resetEventTotals() {
	framesReceived.Store(0)
	bucketsReorganized.Store(0)
	titratorAccepts.Store(0)
	titratorRejects.Store(0)
}
