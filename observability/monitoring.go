package observability

import (
	"runtime"
	"sync/atomic"
)

// ChatStats is the snapshot reported by the health worker.
type ChatStats struct {
	Sessions           int    `json:"sessions"`
	Broadcasts         uint64 `json:"broadcasts"`
	PrivateDelivered   uint64 `json:"private_delivered"`
	PrivateDropped     uint64 `json:"private_dropped"`
	MalformedPayloads  uint64 `json:"malformed_payloads"`
	SummariesRequested uint64 `json:"summaries_requested"`
	SummariesFailed    uint64 `json:"summaries_failed"`
	DroppedDeliveries  uint64 `json:"dropped_deliveries"`
	PresenceUpdates    uint64 `json:"presence_updates"`
	AllocMemMb         uint64 `json:"alloc_mem_mb"`
	NumGC              uint32 `json:"num_gc"`
}

// MonitoringManager holds routing counters shared by every connection handler.
type MonitoringManager struct {
	broadcasts         uint64
	privateDelivered   uint64
	privateDropped     uint64
	malformedPayloads  uint64
	summariesRequested uint64
	summariesFailed    uint64
	droppedDeliveries  uint64
	presenceUpdates    uint64
}

func NewMonitoringManager() *MonitoringManager {
	return &MonitoringManager{}
}

func (mm *MonitoringManager) IncrBroadcasts()         { atomic.AddUint64(&mm.broadcasts, 1) }
func (mm *MonitoringManager) IncrPrivateDelivered()   { atomic.AddUint64(&mm.privateDelivered, 1) }
func (mm *MonitoringManager) IncrPrivateDropped()     { atomic.AddUint64(&mm.privateDropped, 1) }
func (mm *MonitoringManager) IncrMalformedPayloads()  { atomic.AddUint64(&mm.malformedPayloads, 1) }
func (mm *MonitoringManager) IncrSummariesRequested() { atomic.AddUint64(&mm.summariesRequested, 1) }
func (mm *MonitoringManager) IncrSummariesFailed()    { atomic.AddUint64(&mm.summariesFailed, 1) }
func (mm *MonitoringManager) IncrDroppedDeliveries()  { atomic.AddUint64(&mm.droppedDeliveries, 1) }
func (mm *MonitoringManager) IncrPresenceUpdates()    { atomic.AddUint64(&mm.presenceUpdates, 1) }

// GetLatest loads every counter and the Go memory stats.
func (mm *MonitoringManager) GetLatest(sessions int) ChatStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return ChatStats{
		Sessions:           sessions,
		Broadcasts:         atomic.LoadUint64(&mm.broadcasts),
		PrivateDelivered:   atomic.LoadUint64(&mm.privateDelivered),
		PrivateDropped:     atomic.LoadUint64(&mm.privateDropped),
		MalformedPayloads:  atomic.LoadUint64(&mm.malformedPayloads),
		SummariesRequested: atomic.LoadUint64(&mm.summariesRequested),
		SummariesFailed:    atomic.LoadUint64(&mm.summariesFailed),
		DroppedDeliveries:  atomic.LoadUint64(&mm.droppedDeliveries),
		PresenceUpdates:    atomic.LoadUint64(&mm.presenceUpdates),
		AllocMemMb:         m.Alloc / 1024 / 1024,
		NumGC:              m.NumGC,
	}
}
