package workers

import (
	"context"
	"log/slog"
	"reflect"
	"time"
)

const capacityWarnPercent = 80

type NamedChannel struct {
	Name    string
	Channel any
}

type ChannelUsage struct {
	Name     string
	Capacity int
	Length   int
}

// ChannelCapacityWorker periodically samples len and cap of the given channels.
// Reading them never blocks the producers or consumers.
type ChannelCapacityWorker struct {
	log            *slog.Logger
	channels       []NamedChannel
	metricInterval time.Duration
}

func NewChannelCapacityWorker(log *slog.Logger, channels []NamedChannel,
	metricInterval time.Duration) *ChannelCapacityWorker {
	return &ChannelCapacityWorker{log: log, channels: channels, metricInterval: metricInterval}
}

func (w *ChannelCapacityWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.metricInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, usage := range w.Sample() {
				w.report(usage)
			}
		}
	}
}

// Sample reads the current usage of every channel, skipping non-channels.
func (w *ChannelCapacityWorker) Sample() []ChannelUsage {
	usages := make([]ChannelUsage, 0, len(w.channels))
	for _, nc := range w.channels {
		v := reflect.ValueOf(nc.Channel)
		if v.Kind() != reflect.Chan {
			w.log.Error("Provided object is not a channel", "name", nc.Name)
			continue
		}
		usages = append(usages, ChannelUsage{Name: nc.Name, Capacity: v.Cap(), Length: v.Len()})
	}
	return usages
}

func (w *ChannelCapacityWorker) report(usage ChannelUsage) {
	if usage.Capacity > 0 && usage.Length*100 >= usage.Capacity*capacityWarnPercent {
		w.log.Warn("Channel nearly full", "name", usage.Name, "length", usage.Length, "capacity", usage.Capacity)
		return
	}
	w.log.Debug("Channel usage", "name", usage.Name, "length", usage.Length, "capacity", usage.Capacity)
}
