package daemon

import (
	"context"
	"testing"

	"github.com/pilebones/go-udev/netlink"
)

func TestHotplugMonitorRunning(t *testing.T) {
	t.Run("nil monitor returns false", func(t *testing.T) {
		var m *hotplugMonitor
		if m.Running() {
			t.Error("expected Running() to return false for nil monitor")
		}
	})

	t.Run("unstarted monitor returns false", func(t *testing.T) {
		m := newHotplugMonitor(nil, nil)
		if m.Running() {
			t.Error("expected Running() to return false for unstarted monitor")
		}
	})
}

func TestHotplugMonitorStopStartIdempotency(t *testing.T) {
	t.Run("stop on nil monitor is safe", func(t *testing.T) {
		var m *hotplugMonitor
		m.Stop() // must not panic
	})

	t.Run("start on nil monitor is safe", func(t *testing.T) {
		var m *hotplugMonitor
		if err := m.Start(context.Background()); err != nil {
			t.Fatalf("Start on nil monitor should return nil, got: %v", err)
		}
	})

	t.Run("stop on unstarted monitor is safe", func(t *testing.T) {
		m := newHotplugMonitor(nil, nil)
		m.Stop() // must not panic
		if m.Running() {
			t.Error("expected Running() to return false after Stop on unstarted monitor")
		}
	})

	t.Run("double stop is safe", func(t *testing.T) {
		m := newHotplugMonitor(nil, nil)
		m.Stop()
		m.Stop()
	})
}

func TestHotplugMatcher(t *testing.T) {
	m := newHotplugMonitor(nil, nil)
	matcher := m.buildMatcher()
	if matcher == nil {
		t.Fatal("expected non-nil matcher")
	}

	accepted := []netlink.UEvent{
		{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "video4linux"}},
		{Action: netlink.REMOVE, Env: map[string]string{"SUBSYSTEM": "video4linux"}},
		{Action: netlink.CHANGE, Env: map[string]string{"SUBSYSTEM": "sound"}},
		{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "sound"}},
	}
	for _, event := range accepted {
		if !matcher.Evaluate(event) {
			t.Errorf("expected matcher to accept %s on %s", event.Action, event.Env["SUBSYSTEM"])
		}
	}

	rejected := []netlink.UEvent{
		{Action: netlink.ADD, Env: map[string]string{"SUBSYSTEM": "block"}},
		{Action: netlink.CHANGE, Env: map[string]string{"SUBSYSTEM": "usb"}},
	}
	for _, event := range rejected {
		if matcher.Evaluate(event) {
			t.Errorf("expected matcher to reject %s on %s", event.Action, event.Env["SUBSYSTEM"])
		}
	}
}

func TestHotplugHandleEvent(t *testing.T) {
	t.Run("reports subsystem and device name", func(t *testing.T) {
		var gotSubsystem, gotDevice string
		m := newHotplugMonitor(nil, func(subsystem, device string) {
			gotSubsystem = subsystem
			gotDevice = device
		})

		m.handleEvent(netlink.UEvent{
			Action: netlink.ADD,
			Env: map[string]string{
				"SUBSYSTEM": "video4linux",
				"DEVNAME":   "/dev/video2",
			},
		})

		if gotSubsystem != "video4linux" || gotDevice != "/dev/video2" {
			t.Errorf("changed(%q, %q), want (video4linux, /dev/video2)", gotSubsystem, gotDevice)
		}
	})

	t.Run("falls back to DEVPATH when DEVNAME missing", func(t *testing.T) {
		var gotDevice string
		m := newHotplugMonitor(nil, func(subsystem, device string) {
			gotDevice = device
		})

		m.handleEvent(netlink.UEvent{
			Action: netlink.ADD,
			Env: map[string]string{
				"SUBSYSTEM": "video4linux",
				"DEVPATH":   "/devices/pci0000:00/0000:00:14.0/usb1/1-4/1-4:1.0/video4linux/video0",
			},
		})

		if gotDevice != "/dev/video0" {
			t.Errorf("device = %q, want /dev/video0 from DEVPATH", gotDevice)
		}
	})

	t.Run("ignores event without device name", func(t *testing.T) {
		called := false
		m := newHotplugMonitor(nil, func(subsystem, device string) {
			called = true
		})

		m.handleEvent(netlink.UEvent{
			Action: netlink.CHANGE,
			Env:    map[string]string{"SUBSYSTEM": "sound"},
		})

		if called {
			t.Error("changed should not be called for event without device name")
		}
	})

	t.Run("nil callback is safe", func(t *testing.T) {
		m := newHotplugMonitor(nil, nil)
		m.handleEvent(netlink.UEvent{
			Action: netlink.ADD,
			Env: map[string]string{
				"SUBSYSTEM": "sound",
				"DEVNAME":   "/dev/snd/pcmC1D0c",
			},
		})
	})
}
