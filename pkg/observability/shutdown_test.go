package observability

import (
	"context"
	"errors"
	"io"
	"sync/atomic"
	"testing"
	"time"
)

func TestShutdown_RunsRegisteredFuncs(t *testing.T) {
	sm := NewShutdownManager(NewLogger(ErrorLevel, io.Discard), time.Second)

	var calls int32
	sm.RegisterShutdownFunc(func(_ context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})
	sm.RegisterShutdownFunc(func(_ context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	if err := sm.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown failed: %v", err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("expected 2 shutdown calls, got %d", calls)
	}
}

func TestShutdown_ReportsErrors(t *testing.T) {
	sm := NewShutdownManager(NewLogger(ErrorLevel, io.Discard), time.Second)

	sm.RegisterShutdownFunc(func(_ context.Context) error {
		return errors.New("close failed")
	})

	if err := sm.Shutdown(context.Background()); err == nil {
		t.Error("expected error from failing shutdown func")
	}
}

func TestWaitForShutdown_ContextCancelRunsShutdown(t *testing.T) {
	sm := NewShutdownManager(NewLogger(ErrorLevel, io.Discard), time.Second)

	var calls int32
	sm.RegisterShutdownFunc(func(_ context.Context) error {
		atomic.AddInt32(&calls, 1)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sm.WaitForShutdown(ctx) }()

	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("WaitForShutdown failed: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForShutdown did not return after context cancellation")
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Errorf("expected shutdown func to run once, got %d", calls)
	}
}

func TestShutdown_Timeout(t *testing.T) {
	sm := NewShutdownManager(NewLogger(ErrorLevel, io.Discard), time.Second)

	block := make(chan struct{})
	t.Cleanup(func() { close(block) })
	sm.RegisterShutdownFunc(func(_ context.Context) error {
		<-block
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if err := sm.Shutdown(ctx); err == nil {
		t.Error("expected timeout error")
	}
}
