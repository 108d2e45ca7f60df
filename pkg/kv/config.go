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
	"fmt"
	"time"

	"github.com/daemondex/daemondex/pkg/models"
)

// StoreType selects the persistence backend.
type StoreType string

const (
	StoreTypeMemory   StoreType = "memory"
	StoreTypeNATS     StoreType = "nats"
	StoreTypeRedis    StoreType = "redis"
	StoreTypePostgres StoreType = "postgres"
)

const defaultBucket = "daemondex-registry"

// Config holds the configuration for the KV backend.
type Config struct {
	Type        StoreType       `json:"type" yaml:"type"`
	NATSURL     string          `json:"nats_url,omitempty" yaml:"nats_url,omitempty"`
	Bucket      string          `json:"bucket,omitempty" yaml:"bucket,omitempty"`
	BucketTTL   models.Duration `json:"bucket_ttl,omitempty" yaml:"bucket_ttl,omitempty"` // TTL for entries (0 = no expiry)
	RedisURL    string          `json:"redis_url,omitempty" yaml:"redis_url,omitempty"`
	PostgresDSN string          `json:"postgres_dsn,omitempty" yaml:"postgres_dsn,omitempty"`
}

// Validate ensures the configuration is valid and applies defaults.
func (c *Config) Validate() error {
	if c.Type == "" {
		c.Type = StoreTypeMemory
	}

	switch c.Type {
	case StoreTypeNATS:
		if c.NATSURL == "" {
			return errNatsURLRequired
		}
	case StoreTypeRedis:
		if c.RedisURL == "" {
			return errRedisURLRequired
		}
	case StoreTypePostgres:
		if c.PostgresDSN == "" {
			return errPostgresDSNRequired
		}
	case StoreTypeMemory:
	default:
		return fmt.Errorf("%w: %s", errUnknownStoreType, c.Type)
	}

	if c.BucketTTL < 0 {
		return errBucketTTLNegative
	}

	c.setDefaultBucket()

	return nil
}

// setDefaultBucket assigns a default bucket name if none is specified.
func (c *Config) setDefaultBucket() {
	if c.Bucket == "" {
		c.Bucket = defaultBucket
	}
}

// NewStore builds the KVStore selected by the config. The config must have
// been validated first.
func NewStore(ctx context.Context, cfg *Config) (KVStore, error) {
	switch cfg.Type {
	case StoreTypeNATS:
		return NewNatsStore(ctx, cfg.NATSURL, cfg.Bucket, time.Duration(cfg.BucketTTL))
	case StoreTypeRedis:
		return NewRedisStore(ctx, cfg.RedisURL)
	case StoreTypePostgres:
		return NewPostgresStore(ctx, cfg.PostgresDSN)
	case StoreTypeMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", errUnknownStoreType, cfg.Type)
	}
}
