// Package monitor samples the resource usage of the pit wall process for
// the status endpoint.
package monitor

import "time"

// Monitor collects one kind of state.
type Monitor interface {
	Name() string
	Collect() (any, error)
}

// ProcessState is the resource usage of this process.
type ProcessState struct {
	PID        int32   `json:"pid"`
	RSSBytes   uint64  `json:"rss_bytes"`
	CPUPercent float64 `json:"cpu_percent"`
	Threads    int32   `json:"threads"`
	Goroutines int     `json:"goroutines"`
}

// MemoryState is host memory usage.
type MemoryState struct {
	UsedBytes      uint64  `json:"used_bytes"`
	AvailableBytes uint64  `json:"available_bytes"`
	TotalBytes     uint64  `json:"total_bytes"`
	UsagePercent   float64 `json:"usage_percent"`
}

// State is the latest sample of every monitor.
type State struct {
	Process   ProcessState `json:"process"`
	Memory    MemoryState  `json:"host_memory"`
	Uptime    string       `json:"uptime"`
	Timestamp time.Time    `json:"timestamp"`
}
