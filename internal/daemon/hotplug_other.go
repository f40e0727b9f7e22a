//go:build !linux

package daemon

import (
	"context"
	"log/slog"
)

// hotplugMonitor is inert off Linux: there is no netlink, so device
// listings refresh on demand instead.
type hotplugMonitor struct{}

func newHotplugMonitor(logger *slog.Logger, changed func(subsystem, device string)) *hotplugMonitor {
	return &hotplugMonitor{}
}

func (m *hotplugMonitor) Start(ctx context.Context) error { return nil }

func (m *hotplugMonitor) Stop() {}

func (m *hotplugMonitor) Running() bool { return false }
