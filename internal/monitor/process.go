package monitor

import (
	"os"
	"runtime"
	"sync"

	"github.com/shirou/gopsutil/v4/process"
)

// ProcessMonitor reports the usage of the current process.
type ProcessMonitor struct {
	mu   sync.Mutex
	proc *process.Process
}

// NewProcessMonitor attaches to the current process.
func NewProcessMonitor() (*ProcessMonitor, error) {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return nil, err
	}
	return &ProcessMonitor{proc: p}, nil
}

func (m *ProcessMonitor) Name() string {
	return "process"
}

func (m *ProcessMonitor) Collect() (any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	memInfo, err := m.proc.MemoryInfo()
	if err != nil {
		return nil, err
	}

	state := &ProcessState{
		PID:        m.proc.Pid,
		RSSBytes:   memInfo.RSS,
		Goroutines: runtime.NumGoroutine(),
	}

	// CPU and thread counts are best effort on some platforms.
	if pct, err := m.proc.Percent(0); err == nil {
		state.CPUPercent = pct
	}
	if threads, err := m.proc.NumThreads(); err == nil {
		state.Threads = threads
	}

	return state, nil
}
