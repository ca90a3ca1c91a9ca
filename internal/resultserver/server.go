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

// Package resultserver exposes a run's JSON result document and its
// Prometheus metrics over HTTP: k, algorithm name, epsilon, world size,
// input settings, the resolved subset (rows + total coverage), and
// timings.
package resultserver

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"repsub/pkg/subset"
)

// Result is the run's output document.
type Result struct {
	RunID         string           `json:"runId"`
	K             int              `json:"k"`
	Algorithm     string           `json:"algorithm"`
	Epsilon       float64          `json:"epsilon"`
	WorldSize     int              `json:"worldSize"`
	InputSettings map[string]any   `json:"inputSettings,omitempty"`
	Subset        subset.Snapshot  `json:"subset"`
	TimingsMs     map[string]int64 `json:"timingsMs,omitempty"`
}

// status is a partial view served while the run is still in progress, or
// a fatal error status once the run has failed.
type status struct {
	State  string  `json:"state"`
	Result *Result `json:"result,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// Server serves the current run status and Prometheus metrics. SetResult
// and SetError are safe to call from the goroutine driving the run while
// ListenAndServe handles requests concurrently.
type Server struct {
	mu     sync.RWMutex
	state  string
	result *Result
	errMsg string
}

// NewServer returns a server initially reporting state "running".
func NewServer() *Server {
	return &Server{state: "running"}
}

// SetResult records the finished run's result and marks the server done.
func (s *Server) SetResult(r *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.result = r
	s.state = "done"
}

// SetError records a fatal error and marks the server failed.
func (s *Server) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = err.Error()
	s.state = "error"
}

// RegisterRoutes mounts /result and /metrics on mux.
func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/result", s.handleResult)
	mux.Handle("/metrics", promhttp.Handler())
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	st := status{State: s.state, Result: s.result, Error: s.errMsg}
	s.mu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	if st.State == "error" {
		w.WriteHeader(http.StatusInternalServerError)
	}
	_ = json.NewEncoder(w).Encode(st)
}

// ListenAndServe starts the HTTP server on addr.
func (s *Server) ListenAndServe(addr string) error {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	return httpServer.ListenAndServe()
}
