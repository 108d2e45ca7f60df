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

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daemondex/daemondex/pkg/logger"
)

var (
	errStartBoom = errors.New("start failed")
	errStopBoom  = errors.New("stop failed")
)

type stopRecorder struct {
	mu    sync.Mutex
	order []string
}

func (r *stopRecorder) record(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = append(r.order, name)
}

func (r *stopRecorder) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.order...)
}

// fakeService blocks in Start until Stop is called or the context ends,
// the way the real HTTP server and sweeper do.
type fakeService struct {
	name     string
	startErr error
	stopErr  error
	recorder *stopRecorder
	stopCh   chan struct{}
	stopOnce sync.Once
}

func newFakeService(name string, rec *stopRecorder) *fakeService {
	return &fakeService{name: name, recorder: rec, stopCh: make(chan struct{})}
}

func (f *fakeService) Start(ctx context.Context) error {
	if f.startErr != nil {
		return f.startErr
	}

	select {
	case <-ctx.Done():
	case <-f.stopCh:
	}

	return nil
}

func (f *fakeService) Stop(context.Context) error {
	f.stopOnce.Do(func() { close(f.stopCh) })

	if f.recorder != nil {
		f.recorder.record(f.name)
	}

	return f.stopErr
}

func runServerAsync(ctx context.Context, opts *ServerOptions) <-chan error {
	done := make(chan error, 1)

	go func() {
		done <- RunServer(ctx, opts)
	}()

	return done
}

func waitForRun(t *testing.T, done <-chan error) error {
	t.Helper()

	select {
	case err := <-done:
		return err
	case <-time.After(5 * time.Second):
		t.Fatal("RunServer did not return")
		return nil
	}
}

func TestRunServerStopsOnContextCancel(t *testing.T) {
	rec := &stopRecorder{}
	ctx, cancel := context.WithCancel(context.Background())

	done := runServerAsync(ctx, &ServerOptions{
		ServiceName: "registryd",
		Services: []Service{
			newFakeService("sweeper", rec),
			newFakeService("api", rec),
		},
		Logger: logger.NewTestLogger(),
	})

	cancel()

	require.NoError(t, waitForRun(t, done))

	// Reverse registration order: the listener drains first.
	assert.Equal(t, []string{"api", "sweeper"}, rec.names())
}

func TestRunServerShutsDownOnServiceFailure(t *testing.T) {
	rec := &stopRecorder{}
	healthy := newFakeService("healthy", rec)
	broken := newFakeService("broken", rec)
	broken.startErr = errStartBoom

	done := runServerAsync(context.Background(), &ServerOptions{
		ServiceName: "registryd",
		Services:    []Service{healthy, broken},
		Logger:      logger.NewTestLogger(),
	})

	require.ErrorIs(t, waitForRun(t, done), errStartBoom)
	assert.Equal(t, []string{"broken", "healthy"}, rec.names())
}

func TestRunServerStartErrorWinsOverStopError(t *testing.T) {
	broken := newFakeService("broken", nil)
	broken.startErr = errStartBoom
	broken.stopErr = errStopBoom

	done := runServerAsync(context.Background(), &ServerOptions{
		Services: []Service{broken},
		Logger:   logger.NewTestLogger(),
	})

	require.ErrorIs(t, waitForRun(t, done), errStartBoom)
}

func TestRunServerReturnsStopError(t *testing.T) {
	svc := newFakeService("api", nil)
	svc.stopErr = errStopBoom

	ctx, cancel := context.WithCancel(context.Background())

	done := runServerAsync(ctx, &ServerOptions{
		Services: []Service{svc},
		Logger:   logger.NewTestLogger(),
	})

	cancel()

	require.ErrorIs(t, waitForRun(t, done), errStopBoom)
}

func TestRunServerNoServices(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	done := runServerAsync(ctx, &ServerOptions{Logger: logger.NewTestLogger()})

	cancel()

	require.NoError(t, waitForRun(t, done))
}

func TestCreateComponentLogger(t *testing.T) {
	log, err := CreateComponentLogger(context.Background(), "registry", &logger.Config{Level: "debug", Output: "stdout"})
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestCreateLoggerDefaultsNilConfig(t *testing.T) {
	log, err := CreateLogger(context.Background(), nil)
	require.NoError(t, err)
	require.NotNil(t, log)
}

func TestCreateLoggerRejectsBadLevel(t *testing.T) {
	_, err := CreateLogger(context.Background(), &logger.Config{Level: "chatty"})
	require.Error(t, err)
}
