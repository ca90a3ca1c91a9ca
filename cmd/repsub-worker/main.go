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

// Package main is one worker's entry point: load this rank's shard, run
// the local greedy selector over it, and ship the result to the
// coordinator.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"repsub/internal/config"
	"repsub/internal/loader"
	"repsub/internal/telemetry"
	"repsub/internal/transport"
	"repsub/internal/wire"
	"repsub/internal/worker"
	"repsub/pkg/relevance"
	"repsub/pkg/row"
)

func main() {
	// Selection knobs, mirrored with the coordinator so both sides agree
	// on k/epsilon/algorithm without a config-sync round trip.
	k := flag.Int("k", 10, "target subset size")
	epsilon := flag.Float64("epsilon", 0.01, "numerical exhaustion guard for the Fast/LazyFast selectors")
	algorithm := flag.Int("algorithm", int(config.Fast), "local selector: 0=Naive 1=Lazy 2=Fast 3=LazyFast 4=Streaming")
	distributedAlgorithm := flag.Int("distributed_algorithm", int(config.RandGreedI), "0=RandGreedI (bulk gather) 1=SieveStreaming 2=ThreeSieve (per-row stream)")
	alpha := flag.Float64("alpha", 1.0, "fraction of k this worker contributes locally: floor(alpha*k)")

	// Dataset knobs.
	datasetPath := flag.String("dataset", "", "path to the dataset file (dense-csv or sparse-coo)")
	datasetFormat := flag.String("dataset_format", "dense-csv", "dense-csv, sparse-coo, or postgres")
	postgresDSN := flag.String("postgres_dsn", "", "postgres connection string, required when dataset_format=postgres")
	adjacencyListColumnCount := flag.Int("adjacency_list_column_count", 0, "fixed fan-out for sparse-coo datasets shaped as adjacency lists; 0 means use total_columns instead")
	totalColumns := flag.Int("total_columns", 0, "sparse-coo column count when the dataset isn't a fixed-fanout adjacency list")
	normalizeRows := flag.Bool("normalize_rows", false, "L2-normalize every row after loading")

	// Topology.
	worldSize := flag.Int("world_size", 1, "total number of workers")
	rank := flag.Int("rank", 0, "this worker's rank in [0, world_size)")

	// Transport.
	transportAdapter := flag.String("transport", "channel", "channel, redis, or log")
	redisAddr := flag.String("redis_addr", "", "redis address, required when transport=redis")
	redisStream := flag.String("redis_stream", "repsub-frames", "redis stream name carrying worker frames")
	redisGroup := flag.String("redis_group", "repsub-coordinator", "redis consumer group name")

	// Observability.
	metricsAddr := flag.String("metrics_addr", "", "if non-empty, expose Prometheus /metrics on this address")
	logInterval := flag.Duration("log_interval", 0, "if > 0, periodically log a telemetry summary")

	flag.Parse()

	cfg := config.Config{
		K:                        *k,
		Epsilon:                  *epsilon,
		Algorithm:                config.Algorithm(*algorithm),
		DistributedAlgorithm:     config.DistributedAlgorithm(*distributedAlgorithm),
		Alpha:                    *alpha,
		Theta:                    0.5,
		ThreeSieveT:              2,
		AdjacencyListColumnCount: *adjacencyListColumnCount,
		TotalColumns:             *totalColumns,
		DatasetPath:              *datasetPath,
		DatasetFormat:            *datasetFormat,
		PostgresDSN:              *postgresDSN,
		NormalizeRows:            *normalizeRows,
		WorldSize:                *worldSize,
		Rank:                     *rank,
		TransportAdapter:         *transportAdapter,
		RedisAddr:                *redisAddr,
		RedisStream:              *redisStream,
		RedisGroup:               *redisGroup,
		MetricsAddr:              *metricsAddr,
		LogInterval:              int(logInterval.Seconds()),
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	telemetry.Enable(telemetry.Config{
		Enabled:     *metricsAddr != "" || *logInterval > 0,
		MetricsAddr: *metricsAddr,
		LogInterval: *logInterval,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		fmt.Println("worker: received shutdown signal, cancelling in-flight run")
		cancel()
	}()

	rows, kind, err := loadDataset(cfg)
	if err != nil {
		log.Fatalf("loading dataset: %v", err)
	}

	assigner := worker.NewShardAssigner(cfg.WorldSize)
	globals := assigner.LocalIndices(cfg.Rank, len(rows))
	localRows := make([]row.Row, len(globals))
	for i, g := range globals {
		localRows[i] = rows[g]
	}
	store, err := row.NewSegmented(localRows, globals)
	if err != nil {
		log.Fatalf("building shard store: %v", err)
	}
	fmt.Printf("worker %d/%d: %d of %d rows assigned\n", cfg.Rank, cfg.WorldSize, store.Len(), len(rows))

	tr, err := transport.Build(ctx, cfg.TransportAdapter, transport.Options{
		RedisAddr:     cfg.RedisAddr,
		RedisStream:   cfg.RedisStream,
		RedisGroup:    cfg.RedisGroup,
		ChannelBuffer: 256,
	})
	if err != nil {
		log.Fatalf("building transport: %v", err)
	}

	w := &worker.Worker{
		Rank:     cfg.Rank,
		Store:    store,
		Calc:     relevance.NewNaive(store),
		Selector: cfg.Selector(),
		K:        cfg.LocalK(),
		Kind:     kind,
		Sender:   tr.NewSender(cfg.Rank),
	}

	if cfg.DistributedAlgorithm == config.RandGreedI {
		err = w.RunBulk(ctx)
	} else {
		err = w.RunStreaming(ctx)
	}
	if err != nil {
		log.Fatalf("worker run: %v", err)
	}
	fmt.Printf("worker %d/%d: done\n", cfg.Rank, cfg.WorldSize)
}

func loadDataset(cfg config.Config) ([]row.Row, wire.Kind, error) {
	var source loader.Source
	kind := wire.Dense

	switch cfg.DatasetFormat {
	case "postgres":
		db, err := sql.Open("postgres", cfg.PostgresDSN)
		if err != nil {
			return nil, kind, fmt.Errorf("opening postgres: %w", err)
		}
		source = loader.NewPostgresSource(db, "")
	case "sparse-coo":
		f, err := os.Open(cfg.DatasetPath)
		if err != nil {
			return nil, kind, fmt.Errorf("opening dataset: %w", err)
		}
		defer f.Close()
		if cfg.AdjacencyListColumnCount > 0 {
			source = loader.NewAdjacencyListSource(f, cfg.AdjacencyListColumnCount)
		} else {
			source = loader.NewSparseCOOSource(f, cfg.TotalColumns)
		}
		kind = wire.Sparse
	case "dense-csv", "":
		f, err := os.Open(cfg.DatasetPath)
		if err != nil {
			return nil, kind, fmt.Errorf("opening dataset: %w", err)
		}
		defer f.Close()
		source = loader.NewDenseCSVSource(f)
	default:
		return nil, kind, fmt.Errorf("unknown dataset_format %q", cfg.DatasetFormat)
	}

	if cfg.NormalizeRows {
		source = &loader.NormalizingSource{Delegate: source}
	}
	rows, err := source.Load()
	if err != nil {
		return nil, kind, err
	}
	return rows, kind, nil
}
