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

package coordinator

import (
	"runtime"

	"repsub/pkg/candidate"
	"repsub/pkg/subset"
	"repsub/pkg/titrator"
)

// DrainQueue is the consumer thread: it repeatedly hands whatever is
// currently queued to the titrator until the queue is closed and empty,
// or until the titrator reports that it accepts no further seeds.
func DrainQueue(ti titrator.Titrator, q *candidate.Queue) {
	for {
		if !ti.ProcessQueue(q) || q.Drained() {
			return
		}
		runtime.Gosched()
	}
}

// ResolveStream picks the winner once the stream has ended: the best
// titrator bucket versus the best worker's local solution.
func ResolveStream(ti titrator.Titrator, buffers *Buffers) subset.Subset {
	best := ti.Finalize()
	local := buffers.BestLocal()
	if local == nil {
		return best
	}
	if local.Accum.Score() > best.Score() {
		return local.Accum
	}
	return best
}
