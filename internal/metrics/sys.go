package metrics

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

// SysHealth represents real-time system metrics.
type SysHealth struct {
	Status         string `json:"status"`
	AllocMB        uint64 `json:"alloc_mb"`
	TotalAllocMB   uint64 `json:"total_alloc_mb"`
	SysMB          uint64 `json:"sys_mb"`
	NumGC          uint32 `json:"num_gc"`
	Goroutines     int    `json:"goroutines"`
	ActiveSessions int    `json:"active_sessions"`
	DataDiskSize   string `json:"data_disk_size,omitempty"`
}

// GetSysHealth collects real-time health data. dataPath is the directory of
// the usage database; an empty path skips the disk figure.
func GetSysHealth(dataPath string, activeSessions int) SysHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	h := SysHealth{
		Status:         "ok",
		AllocMB:        m.Alloc / 1024 / 1024,
		TotalAllocMB:   m.TotalAlloc / 1024 / 1024,
		SysMB:          m.Sys / 1024 / 1024,
		NumGC:          m.NumGC,
		Goroutines:     runtime.NumGoroutine(),
		ActiveSessions: activeSessions,
	}
	if dataPath != "" {
		h.DataDiskSize = calculateDirSize(dataPath)
	}
	return h
}

func calculateDirSize(path string) string {
	var size int64
	_ = filepath.Walk(path, func(_ string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			size += info.Size()
		}
		return nil
	})

	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
