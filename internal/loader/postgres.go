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

package loader

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"repsub/internal/repsuberr"
	"repsub/pkg/row"
)

// Postgres schema (reference):
//
// CREATE TABLE IF NOT EXISTS rows (
//   id   BIGINT PRIMARY KEY,
//   vals DOUBLE PRECISION[] NOT NULL
// );

// PostgresSource loads dense rows out of a rows(id, vals float8[]) table,
// ordered by id, via database/sql and lib/pq's array scanning.
type PostgresSource struct {
	db             *sql.DB
	table          string
	defaultTimeout time.Duration
}

// NewPostgresSource returns a source reading from table (default "rows").
func NewPostgresSource(db *sql.DB, table string) *PostgresSource {
	if table == "" {
		table = "rows"
	}
	return &PostgresSource{db: db, table: table, defaultTimeout: 30 * time.Second}
}

// Load implements Source.
func (p *PostgresSource) Load() ([]row.Row, error) {
	ctx, cancel := context.WithTimeout(context.Background(), p.defaultTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT id, vals FROM %s ORDER BY id`, p.table)
	rows, err := p.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %v", repsuberr.ErrTransportFailure, p.table, err)
	}
	defer rows.Close()

	var out []row.Row
	for rows.Next() {
		var id int64
		var vals []float64
		if err := rows.Scan(&id, pq.Array(&vals)); err != nil {
			return nil, fmt.Errorf("%w: scan row id=%d: %v", repsuberr.ErrInputMalformed, id, err)
		}
		values := make([]float32, len(vals))
		for i, v := range vals {
			values[i] = float32(v)
		}
		out = append(out, row.NewDenseRow(values))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate rows: %v", repsuberr.ErrTransportFailure, err)
	}
	return out, nil
}
