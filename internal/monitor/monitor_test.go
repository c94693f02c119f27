package monitor

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/shirou/gopsutil/v4/mem"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

type mockMonitor struct {
	name string
	data any
	err  error
}

func (m *mockMonitor) Name() string {
	return m.name
}

func (m *mockMonitor) Collect() (any, error) {
	return m.data, m.err
}

func TestAggregator_Collect(t *testing.T) {
	monitors := []Monitor{
		&mockMonitor{name: "process", data: &ProcessState{PID: 42, RSSBytes: 1024, Goroutines: 5}},
		&mockMonitor{name: "memory", data: &MemoryState{UsedBytes: 1024, TotalBytes: 2048, UsagePercent: 50.0}},
	}

	agg := NewAggregator(monitors, time.Second, testLogger())
	agg.Collect()

	state := agg.State()
	if state.Process.PID != 42 || state.Process.RSSBytes != 1024 {
		t.Errorf("unexpected process state: %+v", state.Process)
	}
	if state.Memory.UsagePercent != 50.0 {
		t.Errorf("unexpected memory state: %+v", state.Memory)
	}
	if state.Timestamp.IsZero() {
		t.Error("expected timestamp to be set")
	}
}

func TestAggregator_FailingMonitorIsSkipped(t *testing.T) {
	monitors := []Monitor{
		&mockMonitor{name: "process", err: errors.New("permission denied")},
		&mockMonitor{name: "memory", data: &MemoryState{TotalBytes: 2048}},
	}

	agg := NewAggregator(monitors, time.Second, testLogger())
	agg.Collect()

	state := agg.State()
	if state.Process.PID != 0 {
		t.Errorf("expected empty process state, got %+v", state.Process)
	}
	if state.Memory.TotalBytes != 2048 {
		t.Errorf("expected memory state, got %+v", state.Memory)
	}
}

func TestAggregator_StartStopsWithContext(t *testing.T) {
	mon := &mockMonitor{name: "memory", data: &MemoryState{TotalBytes: 1}}
	agg := NewAggregator([]Monitor{mon}, 10*time.Millisecond, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	agg.Start(ctx)
	cancel()

	if agg.State().Memory.TotalBytes != 1 {
		t.Error("Start must collect immediately")
	}
}

func TestProcessMonitor_Collect(t *testing.T) {
	m, err := NewProcessMonitor()
	if err != nil {
		t.Skipf("process monitor unavailable: %v", err)
	}
	if m.Name() != "process" {
		t.Errorf("expected name 'process', got %s", m.Name())
	}

	data, err := m.Collect()
	if err != nil {
		t.Skipf("process stats unavailable: %v", err)
	}
	state, ok := data.(*ProcessState)
	if !ok {
		t.Fatalf("expected *ProcessState, got %T", data)
	}
	if state.PID != int32(os.Getpid()) {
		t.Errorf("expected pid %d, got %d", os.Getpid(), state.PID)
	}
	if state.Goroutines <= 0 {
		t.Error("expected at least one goroutine")
	}
}

func TestMemoryMonitor_Collect(t *testing.T) {
	m := NewMemoryMonitor()
	data, err := m.Collect()
	if err != nil {
		t.Skipf("memory stats unavailable: %v", err)
	}
	state, ok := data.(*MemoryState)
	if !ok {
		t.Fatalf("expected *MemoryState, got %T", data)
	}
	if state.TotalBytes == 0 {
		t.Error("expected non-zero total memory")
	}
}

func TestMemoryMonitor_Read(t *testing.T) {
	m := &MemoryMonitor{read: func() (*mem.VirtualMemoryStat, error) {
		return &mem.VirtualMemoryStat{Total: 8 << 30, Used: 6 << 30, Available: 2 << 30, UsedPercent: 75}, nil
	}}
	data, err := m.Collect()
	if err != nil {
		t.Fatal(err)
	}
	want := &MemoryState{UsedBytes: 6 << 30, AvailableBytes: 2 << 30, TotalBytes: 8 << 30, UsagePercent: 75}
	if diff := cmp.Diff(want, data); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}

	m.read = func() (*mem.VirtualMemoryStat, error) { return nil, errors.New("no /proc") }
	if _, err := m.Collect(); err == nil {
		t.Error("expected the read error")
	}
}
