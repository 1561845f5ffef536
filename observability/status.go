// Package observability reports process health for the status endpoint.
package observability

import (
	"os"
	"runtime"
	"time"

	"github.com/shirou/gopsutil/process"
)

// Status aggregates liveness info returned by GET /api/v1/status.
type Status struct {
	Message     string  `json:"message"`
	Uptime      string  `json:"uptime"`
	Goroutines  int     `json:"goroutines"`
	AllocMemMb  uint64  `json:"alloc_mem_mb"`
	NumGC       uint32  `json:"num_gc"`
	RSSMb       uint64  `json:"rss_mb"`
	CPUPercent  float64 `json:"cpu_percent"`
	OnlineUsers int     `json:"online_users"`
}

type Reporter struct {
	started time.Time
	proc    *process.Process
}

func NewReporter() *Reporter {
	// Errors only mean the platform hides process info; the endpoint then
	// reports runtime stats alone.
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &Reporter{started: time.Now(), proc: proc}
}

// Snapshot collects current process metrics. onlineUsers is supplied by
// the caller since presence lives in the realtime layer.
func (r *Reporter) Snapshot(onlineUsers int) Status {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	status := Status{
		Message:     "Server is live",
		Uptime:      time.Since(r.started).Round(time.Second).String(),
		Goroutines:  runtime.NumGoroutine(),
		AllocMemMb:  memStats.Alloc / 1024 / 1024,
		NumGC:       memStats.NumGC,
		OnlineUsers: onlineUsers,
	}

	if r.proc != nil {
		if mem, err := r.proc.MemoryInfo(); err == nil && mem != nil {
			status.RSSMb = mem.RSS / 1024 / 1024
		}
		if cpu, err := r.proc.CPUPercent(); err == nil {
			status.CPUPercent = cpu
		}
	}
	return status
}
