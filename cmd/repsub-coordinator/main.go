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

// Package main is the coordinator's entry point: gather or stream every
// worker's candidates, run the distributed resolution path named by
// distributed_algorithm, and serve the result over HTTP.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"repsub/internal/config"
	"repsub/internal/coordinator"
	"repsub/internal/randgreedi"
	"repsub/internal/repsuberr"
	"repsub/internal/resultserver"
	"repsub/internal/telemetry"
	"repsub/internal/transport"
	"repsub/internal/wire"

	"github.com/google/uuid"

	"repsub/pkg/candidate"
	"repsub/pkg/relevance"
	"repsub/pkg/row"
	"repsub/pkg/subset"
	"repsub/pkg/titrator"
)

func main() {
	k := flag.Int("k", 10, "target subset size")
	epsilon := flag.Float64("epsilon", 0.01, "SieveStreaming/ThreeSieve approximation slack")
	algorithm := flag.Int("algorithm", int(config.Fast), "local re-run selector for RandGreedI's global pass: 0=Naive 1=Lazy 2=Fast 3=LazyFast 4=Streaming")
	distributedAlgorithm := flag.Int("distributed_algorithm", int(config.RandGreedI), "0=RandGreedI (bulk gather) 1=SieveStreaming 2=ThreeSieve (per-row stream)")
	threeSieveT := flag.Int("three_sieve_t", 2, "ThreeSieve's transfer threshold T")
	stopEarly := flag.Bool("stop_early", false, "stop pulling new frames once the titrator reports IsFull, instead of waiting for every worker's STOP")
	worldSize := flag.Int("world_size", 1, "total number of workers to wait for")
	totalColumns := flag.Int("total_columns", 0, "dataset column count, required to reconstruct sparse rows off the wire")
	datasetFormat := flag.String("dataset_format", "dense-csv", "dense-csv or sparse-coo; selects the wire frame kind")

	transportAdapter := flag.String("transport", "channel", "channel, redis, or log")
	redisAddr := flag.String("redis_addr", "", "redis address, required when transport=redis")
	redisStream := flag.String("redis_stream", "repsub-frames", "redis stream name carrying worker frames")
	redisGroup := flag.String("redis_group", "repsub-coordinator", "redis consumer group name")

	resultAddr := flag.String("result_addr", ":8090", "HTTP listen address serving /result and /metrics")
	metricsAddr := flag.String("metrics_addr", "", "if non-empty, expose Prometheus /metrics on a second address")
	logInterval := flag.Duration("log_interval", 15*time.Second, "if > 0, periodically log a telemetry summary")
	runTimeout := flag.Duration("run_timeout", 5*time.Minute, "fail the run if workers haven't finished within this long")

	flag.Parse()

	cfg := config.Config{
		K:                    *k,
		Epsilon:              *epsilon,
		Algorithm:            config.Algorithm(*algorithm),
		DistributedAlgorithm: config.DistributedAlgorithm(*distributedAlgorithm),
		Alpha:                1.0,
		ThreeSieveT:          *threeSieveT,
		Theta:                0.5,
		StopEarly:            *stopEarly,
		WorldSize:            *worldSize,
		TotalColumns:         *totalColumns,
		DatasetFormat:        *datasetFormat,
		TransportAdapter:     *transportAdapter,
		RedisAddr:            *redisAddr,
		RedisStream:          *redisStream,
		RedisGroup:           *redisGroup,
		MetricsAddr:          *metricsAddr,
		ResultAddr:           *resultAddr,
		LogInterval:          int(logInterval.Seconds()),
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	telemetry.Enable(telemetry.Config{
		Enabled:     *metricsAddr != "" || *logInterval > 0,
		MetricsAddr: *metricsAddr,
		LogInterval: *logInterval,
	})

	runID := uuid.New().String()
	srv := resultserver.NewServer()
	httpServer := &http.Server{
		Addr:         *resultAddr,
		Handler:      mux(srv),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	go func() {
		fmt.Printf("coordinator: run %s, result server listening on %s\n", runID, *resultAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("result server: %v", err)
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), *runTimeout)
	defer cancel()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	kind := wire.Dense
	if cfg.DatasetFormat == "sparse-coo" {
		kind = wire.Sparse
	}

	tr, err := transport.Build(ctx, cfg.TransportAdapter, transport.Options{
		RedisAddr:     cfg.RedisAddr,
		RedisStream:   cfg.RedisStream,
		RedisGroup:    cfg.RedisGroup,
		RedisConsumer: "coordinator-0",
		ChannelBuffer: 256,
	})
	if err != nil {
		log.Fatalf("building transport: %v", err)
	}

	start := time.Now()
	var result subset.Subset
	resultDone := make(chan struct{})
	go func() {
		defer close(resultDone)
		if cfg.DistributedAlgorithm == config.RandGreedI {
			result, err = runRandGreedI(ctx, cfg, tr.Receiver(), kind)
		} else {
			result, err = runStreaming(ctx, cfg, tr.Receiver(), kind)
		}
	}()

	select {
	case <-resultDone:
	case <-stop:
		fmt.Println("coordinator: received shutdown signal, cancelling run")
		cancel()
		<-resultDone
	}
	elapsed := time.Since(start)

	if err != nil {
		srv.SetError(err)
		log.Printf("coordinator run failed: %v", err)
	} else {
		srv.SetResult(&resultserver.Result{
			RunID:     runID,
			K:         cfg.K,
			Algorithm: algorithmName(cfg),
			Epsilon:   cfg.Epsilon,
			WorldSize: cfg.WorldSize,
			InputSettings: map[string]any{
				"distributedAlgorithm": distributedAlgorithmName(cfg),
				"alpha":                cfg.Alpha,
				"threeSieveT":          cfg.ThreeSieveT,
				"stopEarly":            cfg.StopEarly,
			},
			Subset:    subset.ToSnapshot(result),
			TimingsMs: map[string]int64{"totalMs": elapsed.Milliseconds()},
		})
		fmt.Printf("coordinator: resolved subset of %d rows, score %v, in %s\n", result.Size(), result.Score(), elapsed)
	}

	<-stop
	fmt.Println("\ncoordinator: shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("result server shutdown failed: %v", err)
	}
}

func mux(srv *resultserver.Server) http.Handler {
	m := http.NewServeMux()
	srv.RegisterRoutes(m)
	return m
}

func runRandGreedI(ctx context.Context, cfg config.Config, receiver transport.Receiver, kind wire.Kind) (subset.Subset, error) {
	gathered, err := randgreedi.Gather(ctx, receiver, cfg.WorldSize, kind, cfg.TotalColumns)
	if err != nil {
		return nil, err
	}
	factory := func(s *row.Store) relevance.Calculator { return relevance.NewNaive(s) }
	return randgreedi.Resolve(gathered, factory, cfg.Selector(), cfg.K)
}

func runStreaming(ctx context.Context, cfg config.Config, receiver transport.Receiver, kind wire.Kind) (subset.Subset, error) {
	buffers := coordinator.NewBuffers()
	queue := candidate.New()
	consumer := coordinator.NewConsumer(receiver, buffers, queue, kind, cfg.TotalColumns)

	ti := buildTitrator(cfg)

	runErr := make(chan error, 1)
	go func() { runErr <- consumer.Run(ctx) }()

	drained := make(chan struct{})
	go func() {
		coordinator.DrainQueue(ti, queue)
		close(drained)
	}()

	if cfg.StopEarly {
		go watchForFullTitrator(ctx, ti, consumer)
	}

	if err := <-runErr; err != nil {
		return nil, fmt.Errorf("%w: streaming receive loop: %v", repsuberr.ErrTransportFailure, err)
	}
	<-drained

	return coordinator.ResolveStream(ti, buffers), nil
}

// watchForFullTitrator implements the stopEarly option: once the titrator
// reports it can accept no further rows, there is no point waiting out
// the remaining workers' streams.
func watchForFullTitrator(ctx context.Context, ti titrator.Titrator, consumer *coordinator.Consumer) {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if ti.IsFull() {
				consumer.StopReceiving()
				return
			}
		}
	}
}

func buildTitrator(cfg config.Config) titrator.Titrator {
	switch cfg.DistributedAlgorithm {
	case config.StreamingThreeSieve:
		return titrator.NewLazyInit(func(deltaZero float64) titrator.Titrator {
			return titrator.NewThreeSieve(cfg.K, cfg.Epsilon, deltaZero, true, cfg.ThreeSieveT)
		})
	default:
		return titrator.NewLazyInit(func(deltaZero float64) titrator.Titrator {
			return titrator.NewSieveStreaming(cfg.K, cfg.Epsilon, deltaZero, true)
		})
	}
}

func algorithmName(cfg config.Config) string {
	switch cfg.Algorithm {
	case config.Naive:
		return "Naive"
	case config.Lazy:
		return "Lazy"
	case config.LazyFast:
		return "LazyFast"
	case config.Streaming:
		return "Streaming"
	default:
		return "Fast"
	}
}

func distributedAlgorithmName(cfg config.Config) string {
	switch cfg.DistributedAlgorithm {
	case config.StreamingSieve:
		return "SieveStreaming"
	case config.StreamingThreeSieve:
		return "ThreeSieve"
	default:
		return "RandGreedI"
	}
}
