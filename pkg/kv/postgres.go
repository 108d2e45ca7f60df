/*
 * Copyright 2025 The Daemondex Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package kv

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresConnectTimeout = 5 * time.Second

const createKVTableSQL = `
CREATE TABLE IF NOT EXISTS daemondex_kv (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	expires_at TIMESTAMPTZ
)`

const upsertKVSQL = `
INSERT INTO daemondex_kv (key, value, expires_at) VALUES ($1, $2, $3)
ON CONFLICT (key) DO UPDATE SET
	value = EXCLUDED.value,
	expires_at = EXCLUDED.expires_at`

type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to Postgres using a pgx connection string or URL
// and ensures the backing table exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("invalid Postgres DSN: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, postgresConnectTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, createKVTableSQL); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create kv table: %w", err)
	}

	return &PostgresStore{pool: pool}, nil
}

func (p *PostgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	row := p.pool.QueryRow(ctx, `SELECT value, expires_at FROM daemondex_kv WHERE key = $1`, key)

	var (
		value     []byte
		expiresAt *time.Time
	)

	if err := row.Scan(&value, &expiresAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}

		return nil, false, fmt.Errorf("failed to get key %s: %w", key, err)
	}

	if expiresAt != nil && !expiresAt.After(time.Now()) {
		// Expired rows are reaped lazily on read.
		if _, err := p.pool.Exec(ctx, `DELETE FROM daemondex_kv WHERE key = $1`, key); err != nil {
			return nil, false, fmt.Errorf("failed to reap expired key %s: %w", key, err)
		}

		return nil, false, nil
	}

	return value, true, nil
}

func (p *PostgresStore) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt interface{}
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl).UTC()
	}

	if _, err := p.pool.Exec(ctx, upsertKVSQL, key, value, expiresAt); err != nil {
		return fmt.Errorf("failed to put key %s: %w", key, err)
	}

	return nil
}

func (p *PostgresStore) Delete(ctx context.Context, key string) error {
	if _, err := p.pool.Exec(ctx, `DELETE FROM daemondex_kv WHERE key = $1`, key); err != nil {
		return fmt.Errorf("failed to delete key %s: %w", key, err)
	}

	return nil
}

func (p *PostgresStore) Close() error {
	p.pool.Close()
	return nil
}

var _ KVStore = (*PostgresStore)(nil)
