package service

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/v3/process"
)

type resourceMonitor struct {
	proc          *process.Process
	cpuTimeBefore float64
	start         time.Time
	done          chan struct{}
	peak          chan uint64
}

func startResourceMonitor(logger *slog.Logger) *resourceMonitor {
	m := &resourceMonitor{
		start: time.Now(),
		done:  make(chan struct{}),
		peak:  make(chan uint64, 1),
	}

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		logger.Warn("Gagal mendapatkan info proses untuk metrik", "error", err)
		m.peak <- 0
		return m
	}
	m.proc = p

	if times, err := p.Times(); err == nil {
		m.cpuTimeBefore = times.User + times.System
	}

	go func() {
		m.peak <- monitorPeakRAM(p, m.done)
	}()
	return m
}

func monitorPeakRAM(p *process.Process, done <-chan struct{}) uint64 {
	var currentPeakRAM uint64
	sample := func() {
		if memInfo, err := p.MemoryInfo(); err == nil && memInfo.RSS > currentPeakRAM {
			currentPeakRAM = memInfo.RSS
		}
	}
	sample()

	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return currentPeakRAM
		case <-ticker.C:
			sample()
		}
	}
}

func (m *resourceMonitor) stop(logger *slog.Logger, job string) {
	close(m.done)
	peakRAM := <-m.peak
	duration := time.Since(m.start)

	cpuTimeAfter := m.cpuTimeBefore
	if m.proc != nil {
		if times, err := m.proc.Times(); err == nil {
			cpuTimeAfter = times.User + times.System
		}
	}

	cpuPercent := 0.0
	if duration.Seconds() > 0 {
		cpuPercent = ((cpuTimeAfter - m.cpuTimeBefore) / duration.Seconds()) * 100.0
	}

	logger.Info("Metrik Kinerja Proses Selesai",
		"job", job,
		"total_duration", duration.String(),
		"cpu_utilization_percent", fmt.Sprintf("%.2f%%", cpuPercent),
		"peak_ram_mb", fmt.Sprintf("%.2f MB", float64(peakRAM)/1024/1024),
	)
}
