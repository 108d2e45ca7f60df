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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Put(ctx, "daemons.registry", []byte(`{"entries":[]}`), 0)
	require.NoError(t, err)

	value, found, err := store.Get(ctx, "daemons.registry")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, []byte(`{"entries":[]}`), value)
}

func TestMemoryStoreMissingKey(t *testing.T) {
	store := NewMemoryStore()

	value, found, err := store.Get(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, value)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	err := store.Put(ctx, "ephemeral", []byte("v"), time.Millisecond)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, found, err := store.Get(ctx, "ephemeral")
	require.NoError(t, err)
	assert.False(t, found, "expired entry should not be returned")
}

func TestMemoryStoreDelete(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("v"), 0))
	require.NoError(t, store.Delete(ctx, "k"))

	_, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing key is not an error.
	assert.NoError(t, store.Delete(ctx, "k"))
}

func TestMemoryStoreValueIsolation(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	original := []byte("original")
	require.NoError(t, store.Put(ctx, "k", original, 0))

	original[0] = 'X'

	value, found, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, []byte("original"), value, "store must not alias caller slices")

	value[0] = 'Y'

	again, _, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("original"), again)
}
