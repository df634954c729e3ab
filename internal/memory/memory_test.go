package memory

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.MemoryLimitBytes != 0 {
		t.Errorf("MemoryLimitBytes = %d, want 0", cfg.MemoryLimitBytes)
	}
	if cfg.HighWaterMark != 0.7 {
		t.Errorf("HighWaterMark = %f, want 0.7", cfg.HighWaterMark)
	}
	if cfg.CriticalWaterMark != 0.85 {
		t.Errorf("CriticalWaterMark = %f, want 0.85", cfg.CriticalWaterMark)
	}
	if cfg.CheckInterval != 5*time.Second {
		t.Errorf("CheckInterval = %v, want 5s", cfg.CheckInterval)
	}
}

func newTestMonitor(t *testing.T, alloc *uint64) *Monitor {
	t.Helper()
	cfg := DefaultConfig()
	cfg.MemoryLimitBytes = 1000
	m := NewMonitor(cfg)
	m.readHeap = func() uint64 { return *alloc }
	t.Cleanup(m.Stop)
	return m
}

func TestMonitor_PauseAndResume(t *testing.T) {
	alloc := uint64(100)
	m := newTestMonitor(t, &alloc)

	m.checkMemory()
	if m.IsPaused() {
		t.Fatal("monitor paused at 10% usage")
	}

	alloc = 900
	m.checkMemory()
	if !m.IsPaused() {
		t.Fatal("monitor not paused at 90% usage")
	}

	// Between the water marks the state holds.
	alloc = 800
	m.checkMemory()
	if !m.IsPaused() {
		t.Fatal("monitor resumed above the high water mark")
	}

	done := make(chan error, 1)
	go func() { done <- m.Wait(context.Background()) }()

	alloc = 100
	m.checkMemory()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait() did not return after memory recovered")
	}
	if m.IsPaused() {
		t.Error("monitor still paused after recovery")
	}
}

func TestMonitor_WaitHonorsContext(t *testing.T) {
	alloc := uint64(950)
	m := newTestMonitor(t, &alloc)
	m.checkMemory()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	if err := m.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() error = %v, want DeadlineExceeded", err)
	}
}

func TestMonitor_StopReleasesWaiters(t *testing.T) {
	alloc := uint64(950)
	m := newTestMonitor(t, &alloc)
	m.checkMemory()

	m.Stop()
	m.Stop()

	if err := m.Wait(context.Background()); err != nil {
		t.Errorf("Wait() after Stop error = %v", err)
	}
}

func TestMonitor_NilNeverBlocks(t *testing.T) {
	var m *Monitor
	if err := m.Wait(context.Background()); err != nil {
		t.Errorf("nil Monitor Wait() error = %v", err)
	}
}

func TestMonitor_GetUsage(t *testing.T) {
	alloc := uint64(250)
	m := newTestMonitor(t, &alloc)
	m.checkMemory()

	if got := m.GetUsage(); got != 0.25 {
		t.Errorf("GetUsage() = %f, want 0.25", got)
	}
	if m.Limit() != 1000 {
		t.Errorf("Limit() = %d, want 1000", m.Limit())
	}
}
