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

// Package repsuberr defines the error kinds shared across the representative
// subset selection engine. NumericalExhaustion is recoverable: callers shorten
// their output and move on. The rest are fatal and propagate to the driver.
package repsuberr

import "errors"

var (
	// ErrInputMalformed marks a dataset or wire payload that cannot be parsed.
	ErrInputMalformed = errors.New("repsub: input malformed")

	// ErrInvariantViolation marks a broken data invariant (column-count
	// mismatch, non-monotone row index, odd-length sparse payload).
	ErrInvariantViolation = errors.New("repsub: invariant violation")

	// ErrNumericalExhaustion marks a selector that ran out of rows with
	// positive marginal gain before reaching k. Non-fatal: the caller
	// receives a shorter subset, not an error.
	ErrNumericalExhaustion = errors.New("repsub: numerical exhaustion")

	// ErrTransportFailure marks a failure in the abstract message layer
	// between workers and the coordinator.
	ErrTransportFailure = errors.New("repsub: transport failure")
)
