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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "empty type defaults to memory",
			config: Config{},
		},
		{
			name:   "nats with url",
			config: Config{Type: StoreTypeNATS, NATSURL: "nats://localhost:4222"},
		},
		{
			name:    "nats without url",
			config:  Config{Type: StoreTypeNATS},
			wantErr: errNatsURLRequired,
		},
		{
			name:   "redis with url",
			config: Config{Type: StoreTypeRedis, RedisURL: "redis://localhost:6379/0"},
		},
		{
			name:    "redis without url",
			config:  Config{Type: StoreTypeRedis},
			wantErr: errRedisURLRequired,
		},
		{
			name:   "postgres with dsn",
			config: Config{Type: StoreTypePostgres, PostgresDSN: "postgres://daemondex@localhost:5432/daemondex"},
		},
		{
			name:    "postgres without dsn",
			config:  Config{Type: StoreTypePostgres},
			wantErr: errPostgresDSNRequired,
		},
		{
			name:    "unknown type",
			config:  Config{Type: "etcd"},
			wantErr: errUnknownStoreType,
		},
		{
			name:    "negative ttl",
			config:  Config{Type: StoreTypeMemory, BucketTTL: -1},
			wantErr: errBucketTTLNegative,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()

			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.NotEmpty(t, tt.config.Bucket, "validate should apply a default bucket")
		})
	}
}
