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

package telemetry

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Config controls whether telemetry is active and how it is exported.
// MetricsAddr, when non-empty, starts a dedicated HTTP server serving
// /metrics; LogInterval, when non-zero, additionally logs a periodic
// summary (see exporter.go).
type Config struct {
	Enabled     bool
	MetricsAddr string
	LogInterval time.Duration
}

var modEnabled atomic.Bool

var (
	framesReceivedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "repsub_frames_received_total",
		Help: "Total candidate-row frames decoded by the coordinator's consumer.",
	})
	bucketsReorganizedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "repsub_buckets_reorganized_total",
		Help: "Total threshold-bucket ladder rebuilds triggered by a delta-zero revision.",
	})
	titratorAcceptsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "repsub_titrator_accepts_total",
		Help: "Total threshold-bucket accept verdicts; a seed admitted by several buckets counts once per bucket.",
	})
	titratorRejectsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "repsub_titrator_rejects_total",
		Help: "Total threshold-bucket reject verdicts from the pass predicate; a seed turned down by several buckets counts once per bucket.",
	})
	marginalGainHistogram = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "repsub_selector_marginal_gain",
		Help:    "Distribution of per-step marginal gain reported by a greedy selector.",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(framesReceivedTotal, bucketsReorganizedTotal, titratorAcceptsTotal, titratorRejectsTotal, marginalGainHistogram)
}

// Enable configures the module. Safe to call multiple times.
func Enable(cfg Config) {
	modEnabled.Store(cfg.Enabled)
	startOrUpdateExporter(cfg)
	if cfg.MetricsAddr != "" {
		startMetricsEndpoint(cfg.MetricsAddr)
	}
}

// Enabled reports whether telemetry is active.
func Enabled() bool { return modEnabled.Load() }

// ObserveFrame records one decoded frame.
func ObserveFrame() {
	if !modEnabled.Load() {
		return
	}
	framesReceivedTotal.Inc()
	RecordFrame()
}

// ObserveBucketReorganization records one ladder rebuild.
func ObserveBucketReorganization() {
	if !modEnabled.Load() {
		return
	}
	bucketsReorganizedTotal.Inc()
	RecordBucketReorganization()
}

// ObserveTitratorDecision records one bucket accept/reject verdict.
func ObserveTitratorDecision(accepted bool) {
	if !modEnabled.Load() {
		return
	}
	if accepted {
		titratorAcceptsTotal.Inc()
	} else {
		titratorRejectsTotal.Inc()
	}
	RecordTitratorDecision(accepted)
}

// ObserveMarginalGain records one selector step's marginal gain.
func ObserveMarginalGain(gain float64) {
	if !modEnabled.Load() {
		return
	}
	marginalGainHistogram.Observe(gain)
}

// startMetricsEndpoint exposes /metrics on addr in a background goroutine.
func startMetricsEndpoint(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		_ = server.ListenAndServe()
	}()
}
