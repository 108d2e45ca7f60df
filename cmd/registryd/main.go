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

// @title Daemondex API
// @version 1.0
// @description API for announcing and discovering daemon endpoints

// @license.name Apache 2.0
// @license.url http://www.apache.org/licenses/LICENSE-2.0.html

// @BasePath /
// @schemes http https

// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/daemondex/daemondex/pkg/api"
	"github.com/daemondex/daemondex/pkg/config"
	"github.com/daemondex/daemondex/pkg/daemonmd"
	"github.com/daemondex/daemondex/pkg/health"
	"github.com/daemondex/daemondex/pkg/kv"
	"github.com/daemondex/daemondex/pkg/lifecycle"
	"github.com/daemondex/daemondex/pkg/logger"
	"github.com/daemondex/daemondex/pkg/mcpserver"
	"github.com/daemondex/daemondex/pkg/models"
	"github.com/daemondex/daemondex/pkg/probe"
	"github.com/daemondex/daemondex/pkg/registry"
	"github.com/daemondex/daemondex/pkg/version"
)

var errFailedToLoadConfig = fmt.Errorf("failed to load config")

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/daemondex/registryd.json", "Path to registryd config file")
	seedPath := flag.String("seed", "", "Seed list file overriding the embedded default (JSON or YAML)")
	flag.Parse()

	ctx := context.Background()

	cfgLoader := config.NewConfig(nil)

	var cfg ServerConfig

	if err := cfgLoader.LoadAndValidate(ctx, *configPath, &cfg); err != nil {
		return fmt.Errorf("%w: %w", errFailedToLoadConfig, err)
	}

	logConfig := cfg.Logging
	if logConfig == nil {
		logConfig = &logger.Config{
			Level:  "info",
			Output: "stdout",
		}
	}

	registryLogger, err := lifecycle.CreateComponentLogger(ctx, "registryd", logConfig)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer lifecycle.ShutdownLogger()

	kvStore, err := kv.NewStore(ctx, &cfg.KV)
	if err != nil {
		return fmt.Errorf("failed to create KV store: %w", err)
	}

	defer func() {
		if closeErr := kvStore.Close(); closeErr != nil {
			registryLogger.Warn().Err(closeErr).Msg("Failed to close KV store")
		}
	}()

	seed, err := loadSeed(*seedPath, cfg.Registry.SeedFile)
	if err != nil {
		return err
	}

	fetcher := daemonmd.NewFetcher(daemonmd.FetcherConfig{
		Timeout: time.Duration(cfg.Health.Timeout),
		Logger:  registryLogger,
	})
	prober := probe.NewClient(probe.ClientConfig{
		Timeout: time.Duration(cfg.Health.Timeout),
		Logger:  registryLogger,
	})
	checker := health.NewChecker(health.CheckerConfig{
		Timeout:  time.Duration(cfg.Health.Timeout),
		Prober:   prober,
		Verifier: fetcher,
		Logger:   registryLogger,
	})

	svc := registry.NewService(registry.ServiceConfig{
		Store: registry.NewStore(kvStore, seed, registryLogger),
		Limiter: registry.NewRateLimiter(registry.RateLimiterConfig{
			Window: time.Duration(cfg.Registry.AnnounceWindow),
			Limit:  cfg.Registry.AnnounceLimit,
			KV:     kvStore,
			Logger: registryLogger,
		}),
		Activity: registry.NewActivityLog(kvStore, registryLogger),
		Checker:  checker,
		Prober:   prober,
		Verifier: fetcher,
		Logger:   registryLogger,
	})

	sweeper := health.NewSweeper(health.SweeperConfig{
		Interval: time.Duration(cfg.Health.Interval),
		Runner:   svc,
		Logger:   registryLogger,
	})

	apiOptions := []func(*api.APIServer){
		api.WithRegistry(svc),
		api.WithListenAddr(cfg.ListenAddr),
		api.WithAPIKey(cfg.APIKey),
		api.WithLogger(registryLogger),
	}

	mcpSrv := mcpserver.NewServer(svc, registryLogger, cfg.MCP)
	if handler := mcpSrv.Handler(); handler != nil {
		apiOptions = append(apiOptions, api.WithMCPHandler(handler))
	}

	apiServer := api.NewAPIServer(cfg.CORS, apiOptions...)

	registryLogger.Info().
		Str("version", version.GetFullVersion()).
		Str("listen_addr", cfg.ListenAddr).
		Str("kv_type", string(cfg.KV.Type)).
		Int("seed_daemons", len(seed.Daemons)).
		Bool("mcp_enabled", cfg.MCP.Enabled).
		Msg("Starting daemon registry")

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName: "registryd",
		Services:    []lifecycle.Service{sweeper, apiServer},
		Logger:      registryLogger,
	})
}

// loadSeed resolves the seed list: the -seed flag wins over the config
// file path; with neither, the embedded default seed is used.
func loadSeed(flagPath, configPath string) (*models.SeedList, error) {
	path := flagPath
	if path == "" {
		path = configPath
	}

	if path == "" {
		return registry.DefaultSeed(), nil
	}

	seed, err := registry.LoadSeedFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load seed file: %w", err)
	}

	return seed, nil
}
