package utils

import (
	"log"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
)

// SystemSnapshot is the health-endpoint view of the host and this process.
type SystemSnapshot struct {
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryUsedMB   float64 `json:"memory_used_mb"`
	MemoryTotalMB  float64 `json:"memory_total_mb"`
	ProcessRSSInMB float64 `json:"process_rss_mb"`
}

// GetSystemSnapshot samples CPU, host memory and this process's RSS. Failures
// are logged and leave the corresponding field at zero; health reporting
// never fails the request.
func GetSystemSnapshot() SystemSnapshot {
	var snap SystemSnapshot

	if percentages, err := cpu.Percent(100*time.Millisecond, false); err != nil {
		log.Printf("Error getting CPU usage: %v", err)
	} else if len(percentages) > 0 {
		snap.CPUPercent = percentages[0]
	}

	if vm, err := mem.VirtualMemory(); err != nil {
		log.Printf("Error getting memory usage: %v", err)
	} else {
		snap.MemoryUsedMB = float64(vm.Used) / 1024 / 1024
		snap.MemoryTotalMB = float64(vm.Total) / 1024 / 1024
	}

	if proc, err := process.NewProcess(int32(os.Getpid())); err == nil {
		if memInfo, err := proc.MemoryInfo(); err == nil {
			snap.ProcessRSSInMB = float64(memInfo.RSS) / 1024 / 1024
		}
	}

	return snap
}
