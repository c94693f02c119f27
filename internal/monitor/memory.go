package monitor

import (
	"github.com/shirou/gopsutil/v4/mem"
)

// MemoryMonitor samples host memory. Model files and lap data are held in
// memory, so the status page shows how much headroom the host has left.
type MemoryMonitor struct {
	read func() (*mem.VirtualMemoryStat, error)
}

func NewMemoryMonitor() *MemoryMonitor {
	return &MemoryMonitor{read: mem.VirtualMemory}
}

func (m *MemoryMonitor) Name() string { return "host_memory" }

func (m *MemoryMonitor) Collect() (any, error) {
	v, err := m.read()
	if err != nil {
		return nil, err
	}
	return &MemoryState{
		UsedBytes:      v.Used,
		AvailableBytes: v.Available,
		TotalBytes:     v.Total,
		UsagePercent:   v.UsedPercent,
	}, nil
}
