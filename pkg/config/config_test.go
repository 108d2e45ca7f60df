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

package config

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daemondex/daemondex/pkg/models"
)

var errMissingStoreType = errors.New("store type is required")

type storeSettings struct {
	Type     string          `json:"type"`
	RedisURL string          `json:"redis_url,omitempty"`
	Timeout  models.Duration `json:"timeout,omitempty"`
}

type serverSettings struct {
	ListenAddr string        `json:"listen_addr"`
	Debug      bool          `json:"debug,omitempty"`
	Origins    []string      `json:"origins,omitempty"`
	Store      storeSettings `json:"store"`
}

func (s *serverSettings) Validate() error {
	if s.ListenAddr == "" {
		s.ListenAddr = ":8090"
	}

	if s.Store.Type == "" {
		return errMissingStoreType
	}

	return nil
}

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "registryd.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadAndValidateFromFile(t *testing.T) {
	path := writeConfigFile(t, `{
		"listen_addr": ":9000",
		"origins": ["https://one.example", "https://two.example"],
		"store": {"type": "memory", "timeout": "45s"}
	}`)

	var cfg serverSettings

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, []string{"https://one.example", "https://two.example"}, cfg.Origins)
	assert.Equal(t, "memory", cfg.Store.Type)
	assert.Equal(t, models.Duration(45*time.Second), cfg.Store.Timeout)
}

func TestLoadAndValidateAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, `{"store": {"type": "memory"}}`)

	var cfg serverSettings

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg))
	assert.Equal(t, ":8090", cfg.ListenAddr)
}

func TestLoadAndValidateValidationFailure(t *testing.T) {
	path := writeConfigFile(t, `{"listen_addr": ":9000"}`)

	var cfg serverSettings

	err := NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg)
	require.ErrorIs(t, err, errMissingStoreType)
}

func TestLoadAndValidateMissingFile(t *testing.T) {
	var cfg serverSettings

	err := NewConfig(nil).LoadAndValidate(context.Background(), filepath.Join(t.TempDir(), "absent.json"), &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read file")
}

func TestLoadAndValidateMalformedJSON(t *testing.T) {
	path := writeConfigFile(t, `{"listen_addr": `)

	var cfg serverSettings

	err := NewConfig(nil).LoadAndValidate(context.Background(), path, &cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to unmarshal JSON")
}

func TestLoadAndValidateInvalidSource(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "consul")

	var cfg serverSettings

	err := NewConfig(nil).LoadAndValidate(context.Background(), "ignored.json", &cfg)
	require.ErrorIs(t, err, errInvalidConfigSource)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("DAEMONDEX_LISTEN_ADDR", ":7070")
	t.Setenv("DAEMONDEX_DEBUG", "true")
	t.Setenv("DAEMONDEX_ORIGINS", "https://one.example, https://two.example")
	t.Setenv("DAEMONDEX_STORE_TYPE", "redis")
	t.Setenv("DAEMONDEX_STORE_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("DAEMONDEX_STORE_TIMEOUT", "90s")

	var cfg serverSettings

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))

	assert.Equal(t, ":7070", cfg.ListenAddr)
	assert.True(t, cfg.Debug)
	assert.Equal(t, []string{"https://one.example", "https://two.example"}, cfg.Origins)
	assert.Equal(t, "redis", cfg.Store.Type)
	assert.Equal(t, "redis://localhost:6379/0", cfg.Store.RedisURL)
	assert.Equal(t, models.Duration(90*time.Second), cfg.Store.Timeout)
}

func TestLoadFromEnvConfigJSON(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("DAEMONDEX_CONFIG_JSON", `{"listen_addr": ":6060", "store": {"type": "memory"}}`)

	var cfg serverSettings

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))
	assert.Equal(t, ":6060", cfg.ListenAddr)
	assert.Equal(t, "memory", cfg.Store.Type)
}

func TestLoadFromEnvCustomPrefix(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("CONFIG_ENV_PREFIX", "DX_")
	t.Setenv("DX_LISTEN_ADDR", ":5050")
	t.Setenv("DX_STORE_TYPE", "memory")

	var cfg serverSettings

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))
	assert.Equal(t, ":5050", cfg.ListenAddr)
}

func TestLoadFromEnvSkipsMalformedValues(t *testing.T) {
	t.Setenv("CONFIG_SOURCE", "env")
	t.Setenv("DAEMONDEX_DEBUG", "nope")
	t.Setenv("DAEMONDEX_STORE_TYPE", "memory")

	var cfg serverSettings

	require.NoError(t, NewConfig(nil).LoadAndValidate(context.Background(), "", &cfg))
	assert.False(t, cfg.Debug)
}

func TestEnvLoaderRejectsBadDestination(t *testing.T) {
	loader := NewEnvConfigLoader(nil, "DAEMONDEX_")

	err := loader.Load(context.Background(), "", serverSettings{})
	require.ErrorIs(t, err, ErrDstMustBeNonNilPointer)

	value := "not a struct"
	err = loader.Load(context.Background(), "", &value)
	require.ErrorIs(t, err, ErrDstMustBePointerToStruct)
}
