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

// Package lifecycle runs a set of long-lived services under one
// signal-aware loop: start everything, block until a shutdown signal
// or the first service failure, then stop everything in reverse order
// within a bounded grace period.
package lifecycle

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/daemondex/daemondex/pkg/logger"
)

const defaultShutdownTimeout = 10 * time.Second

// Service is a long-lived component managed by RunServer. Start blocks
// until the service ends or ctx is canceled; Stop asks it to wind down
// within the deadline carried by its context.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// ServerOptions configures a RunServer invocation.
type ServerOptions struct {
	ServiceName     string
	Services        []Service
	Logger          logger.Logger
	ShutdownTimeout time.Duration
}

// RunServer starts every service and blocks until an interrupt or
// SIGTERM arrives, the parent context is canceled, or any service's
// Start returns. A service returning early, even cleanly, takes the
// whole process down: these services are expected to run forever.
// Shutdown stops services in reverse registration order so listeners
// drain before the components behind them.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	log := opts.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	// Buffered so every Start goroutine can report without a reader.
	errCh := make(chan error, len(opts.Services))

	for _, svc := range opts.Services {
		wg.Add(1)

		go func(svc Service) {
			defer wg.Done()

			errCh <- svc.Start(sigCtx)
		}(svc)
	}

	var runErr error

	select {
	case <-sigCtx.Done():
		log.Info().Str("service", opts.ServiceName).Msg("Shutdown signal received")
	case err := <-errCh:
		// A canceled context is the signal arriving through a service's
		// Start loop, not a failure.
		if err != nil && !errors.Is(err, context.Canceled) {
			runErr = err

			log.Error().Err(err).Str("service", opts.ServiceName).Msg("Service failed, shutting down")
		} else {
			log.Info().Str("service", opts.ServiceName).Msg("Service exited, shutting down")
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(opts.Services) - 1; i >= 0; i-- {
		if err := opts.Services[i].Stop(shutdownCtx); err != nil {
			log.Error().Err(err).Str("service", opts.ServiceName).Msg("Service shutdown failed")

			if runErr == nil {
				runErr = err
			}
		}
	}

	waitDone := make(chan struct{})

	go func() {
		wg.Wait()
		close(waitDone)
	}()

	select {
	case <-waitDone:
	case <-shutdownCtx.Done():
		log.Warn().Str("service", opts.ServiceName).Msg("Services did not exit before shutdown deadline")
	}

	return runErr
}
