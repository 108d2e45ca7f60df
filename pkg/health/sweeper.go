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

package health

import (
	"context"
	"sync"
	"time"

	"github.com/daemondex/daemondex/pkg/logger"
)

const defaultSweepInterval = time.Minute

// SweeperConfig controls the background sweep loop.
type SweeperConfig struct {
	Interval time.Duration
	Clock    Clock
	Runner   SweepRunner
	Logger   logger.Logger
}

// Sweeper drives the minute-of-hour health schedule. Each tick runs one
// synchronous sweep pass; a slow pass drops ticks rather than stacking
// concurrent sweeps.
type Sweeper struct {
	runner    SweepRunner
	clock     Clock
	interval  time.Duration
	ticker    Ticker
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	logger    logger.Logger
}

func NewSweeper(cfg SweeperConfig) *Sweeper {
	interval := cfg.Interval
	if interval <= 0 {
		interval = defaultSweepInterval
	}

	clock := cfg.Clock
	if clock == nil {
		clock = realClock{}
	}

	log := cfg.Logger
	if log == nil {
		log = logger.NewTestLogger()
	}

	return &Sweeper{
		runner:   cfg.Runner,
		clock:    clock,
		interval: interval,
		done:     make(chan struct{}),
		logger:   log,
	}
}

// Start implements the lifecycle.Service interface.
func (s *Sweeper) Start(ctx context.Context) error {
	s.ticker = s.clock.Ticker(s.interval)

	defer s.ticker.Stop()

	s.logger.Info().Dur("interval", s.interval).Msg("Starting health sweeper")

	s.wg.Add(1)
	defer s.wg.Done()

	s.sweep(ctx, s.clock.Now())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-s.done:
			return nil
		case now := <-s.ticker.Chan():
			s.sweep(ctx, now)
		}
	}
}

// Stop implements the lifecycle.Service interface.
func (s *Sweeper) Stop(_ context.Context) error {
	s.closeOnce.Do(func() {
		close(s.done)
	})

	s.wg.Wait()

	s.logger.Info().Msg("Health sweeper stopped")

	return nil
}

func (s *Sweeper) sweep(ctx context.Context, now time.Time) {
	minute := now.Minute()

	if err := s.runner.SweepDue(ctx, minute); err != nil {
		s.logger.Error().Err(err).Int("minute", minute).Msg("Health sweep failed")
	}
}
