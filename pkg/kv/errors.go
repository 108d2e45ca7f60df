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
	"errors"
)

var (
	errNatsURLRequired     = errors.New("nats_url is required for the nats store")
	errRedisURLRequired    = errors.New("redis_url is required for the redis store")
	errPostgresDSNRequired = errors.New("postgres_dsn is required for the postgres store")
	errUnknownStoreType    = errors.New("unknown store type")
	errBucketTTLNegative   = errors.New("bucket_ttl cannot be negative")
)
