package monitoring

import (
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/disk"
	"github.com/shirou/gopsutil/v3/mem"
)

// Status is a point-in-time snapshot of process and host health, served by
// the status endpoint.
type Status struct {
	UptimeSeconds     int64   `json:"uptimeSeconds"`
	CPUPercent        float64 `json:"cpuPercent"`
	MemoryUsedPercent float64 `json:"memoryUsedPercent"`
	DiskUsedPercent   float64 `json:"diskUsedPercent"`
}

// StatusService samples host metrics for the ops status endpoint.
type StatusService struct {
	startedAt time.Time
	mediaPath string
}

// NewStatusService creates a StatusService; disk usage is sampled for the
// volume holding the media directory.
func NewStatusService(mediaPath string) *StatusService {
	return &StatusService{startedAt: time.Now(), mediaPath: mediaPath}
}

// Snapshot gathers the current host stats. Individual probe failures leave
// that field at zero rather than failing the whole snapshot.
func (s *StatusService) Snapshot() Status {
	status := Status{
		UptimeSeconds: int64(time.Since(s.startedAt).Seconds()),
	}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		status.CPUPercent = percents[0]
	}
	if vm, err := mem.VirtualMemory(); err == nil {
		status.MemoryUsedPercent = vm.UsedPercent
	}
	if du, err := disk.Usage(s.mediaPath); err == nil {
		status.DiskUsedPercent = du.UsedPercent
	}
	return status
}
