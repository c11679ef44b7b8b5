package workers

import (
	"context"
	"log/slog"
	"os"
	"talky/contract"
	"talky/observability"
	"time"

	"github.com/shirou/gopsutil/process"
)

// HealthWorker periodically logs routing counters and the process footprint.
type HealthWorker struct {
	log        *slog.Logger
	interval   time.Duration
	registry   contract.IRegistry
	monitoring *observability.MonitoringManager
}

func NewHealthWorker(log *slog.Logger, interval time.Duration, registry contract.IRegistry,
	monitoring *observability.MonitoringManager) *HealthWorker {
	return &HealthWorker{log: log, interval: interval, registry: registry, monitoring: monitoring}
}

func (w *HealthWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *HealthWorker) report(p *process.Process) {
	stats := w.monitoring.GetLatest(w.registry.Len())
	rss, cpu, err := selfStats(p)
	if err != nil {
		w.log.Warn("Failed to collect self stats", "error", err)
	}

	w.log.Info("health",
		"sessions", stats.Sessions,
		"broadcasts", stats.Broadcasts,
		"private_delivered", stats.PrivateDelivered,
		"private_dropped", stats.PrivateDropped,
		"malformed_payloads", stats.MalformedPayloads,
		"summaries_requested", stats.SummariesRequested,
		"summaries_failed", stats.SummariesFailed,
		"dropped_deliveries", stats.DroppedDeliveries,
		"presence_updates", stats.PresenceUpdates,
		"alloc_mem_mb", stats.AllocMemMb,
		"rss_bytes", rss,
		"cpu_percent", cpu,
	)
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return memInfo.RSS, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
