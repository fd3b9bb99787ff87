package server

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
	"go.uber.org/zap/zaptest/observer"
)

type mockService struct {
	started atomic.Bool
	stopped atomic.Bool
	startFn func() error
	onStop  func()
}

func (m *mockService) Start() error {
	m.started.Store(true)
	if m.startFn != nil {
		return m.startFn()
	}
	// Block until stopped
	for !m.stopped.Load() {
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func (m *mockService) Stop() {
	if m.onStop != nil {
		m.onStop()
	}
	m.stopped.Store(true)
}

func waitStarted(t *testing.T, svcs ...*mockService) {
	t.Helper()
	require.Eventually(t, func() bool {
		for _, s := range svcs {
			if !s.started.Load() {
				return false
			}
		}
		return true
	}, 2*time.Second, 10*time.Millisecond, "services did not start in time")
}

func TestLifecycleStartsAndStopsServicesInReverse(t *testing.T) {
	lc := NewLifecycle(zaptest.NewLogger(t))

	var mu sync.Mutex
	var order []string
	record := func(name string) func() {
		return func() {
			mu.Lock()
			defer mu.Unlock()
			order = append(order, name)
		}
	}
	svc1 := &mockService{onStop: record("svc1")}
	svc2 := &mockService{onStop: record("svc2")}
	lc.Add("svc1", svc1)
	lc.Add("svc2", svc2)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- lc.Run(ctx)
	}()
	waitStarted(t, svc1, svc2)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("lifecycle did not shut down in time")
	}

	assert.True(t, svc1.stopped.Load())
	assert.True(t, svc2.stopped.Load())
	assert.Equal(t, []string{"svc2", "svc1"}, order)
}

func TestLifecycleReturnsFirstServiceError(t *testing.T) {
	lc := NewLifecycle(zap.NewNop())
	boom := errors.New("boom")
	healthy := &mockService{}
	lc.Add("healthy", healthy)
	lc.Add("broken", &mockService{startFn: func() error { return boom }})

	err := lc.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "service broken")
	assert.True(t, healthy.stopped.Load())
}

func TestLifecycleStopTimeout(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	lc := NewLifecycle(zap.New(core))
	lc.StopTimeout = 20 * time.Millisecond
	release := make(chan struct{})
	defer close(release)
	stuck := &mockService{onStop: func() { <-release }}
	lc.Add("stuck", stuck)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		for !stuck.started.Load() {
			time.Sleep(time.Millisecond)
		}
		cancel()
	}()
	require.NoError(t, lc.Run(ctx))
	assert.Len(t, logs.FilterMessage("service stop timed out").All(), 1)
}

func TestNewLifecycle_PanicsOnNilLogger(t *testing.T) {
	assert.Panics(t, func() { NewLifecycle(nil) })
}

func TestFuncService(t *testing.T) {
	started := false
	stopped := false

	svc := &FuncService{
		StartFn: func() error {
			started = true
			return nil
		},
		StopFn: func() {
			stopped = true
		},
	}

	err := svc.Start()
	assert.NoError(t, err)
	assert.True(t, started)

	svc.Stop()
	assert.True(t, stopped)
}

func TestContextService(t *testing.T) {
	var ticks atomic.Int64
	svc := &ContextService{Run: func(ctx context.Context) error {
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(time.Millisecond):
				ticks.Add(1)
			}
		}
	}}

	errc := make(chan error, 1)
	go func() { errc <- svc.Start() }()
	require.Eventually(t, func() bool { return ticks.Load() > 0 }, time.Second, time.Millisecond)
	svc.Stop()
	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Start did not return after Stop")
	}
	svc.Stop()
}

func TestContextService_StopBeforeStartSkipsRun(t *testing.T) {
	var calls atomic.Int64
	svc := &ContextService{Run: func(ctx context.Context) error {
		calls.Add(1)
		<-ctx.Done()
		return nil
	}}
	svc.Stop()
	assert.NoError(t, svc.Start())
	assert.Zero(t, calls.Load())
}

func TestLifecycle_CancelledContextLeavesNothingRunning(t *testing.T) {
	for i := 0; i < 50; i++ {
		var running atomic.Int64
		svc := &ContextService{Run: func(ctx context.Context) error {
			running.Add(1)
			defer running.Add(-1)
			<-ctx.Done()
			return nil
		}}
		lc := NewLifecycle(zap.NewNop())
		lc.Add("runner", svc)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, lc.Run(ctx))
		assert.Never(t, func() bool { return running.Load() != 0 }, 10*time.Millisecond, time.Millisecond,
			"run %d: service still running after Run returned", i)
	}
}
