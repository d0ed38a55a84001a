package main

import (
	"context"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"solar-prediction-api/logger"
	"solar-prediction-api/services"
)

type countingRunner struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (r *countingRunner) RunOnce(context.Context) (services.SyncResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls++
	return services.SyncResult{Processed: 1, Succeeded: 1}, r.err
}

func (r *countingRunner) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

func TestRunLoopRunsImmediatelyAndStops(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &countingRunner{}

	done := make(chan struct{})
	go func() {
		runLoop(ctx, time.Hour, r, logger.Nop())
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for r.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("first cycle did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("runLoop did not stop after cancel")
	}
	if got := r.count(); got != 1 {
		t.Errorf("cycles = %d, want 1", got)
	}
}

func TestRunLoopTicks(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	r := &countingRunner{}

	runLoop(ctx, 20*time.Millisecond, r, logger.Nop())

	if got := r.count(); got < 3 {
		t.Errorf("cycles = %d, want at least 3", got)
	}
}

func TestRunCycleSurvivesErrors(t *testing.T) {
	r := &countingRunner{err: errors.New("db down")}
	runCycle(context.Background(), r, logger.Nop())
	if r.count() != 1 {
		t.Errorf("cycles = %d, want 1", r.count())
	}
}

func TestGetEnv(t *testing.T) {
	t.Run("returns fallback when unset", func(t *testing.T) {
		os.Unsetenv("TEST_USERSYNC_VAR")
		if got := getEnv("TEST_USERSYNC_VAR", "fallback"); got != "fallback" {
			t.Errorf("getEnv() = %q, want %q", got, "fallback")
		}
	})

	t.Run("returns env value when set", func(t *testing.T) {
		os.Setenv("TEST_USERSYNC_VAR", "value")
		defer os.Unsetenv("TEST_USERSYNC_VAR")
		if got := getEnv("TEST_USERSYNC_VAR", "fallback"); got != "value" {
			t.Errorf("getEnv() = %q, want %q", got, "value")
		}
	})
}
