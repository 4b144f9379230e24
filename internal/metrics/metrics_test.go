package metrics

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCollector_Registration(t *testing.T) {
	c := New()

	c.ComponentRegistered()
	c.ComponentRegistered()
	if c.ComponentsRegistered() != 2 {
		t.Errorf("registered = %d, want 2", c.ComponentsRegistered())
	}
}

func TestCollector_Discovery(t *testing.T) {
	c := New()

	c.ComponentQueried(2)
	c.ComponentQueried(0)
	c.ComponentQueried(3)
	c.DiscoveryCompleted(5, 10*time.Millisecond)

	if c.ComponentQueries() != 3 {
		t.Errorf("queries = %d, want 3", c.ComponentQueries())
	}
	if c.PortsReported() != 5 {
		t.Errorf("ports reported = %d, want 5", c.PortsReported())
	}
	if c.ActivePorts() != 5 {
		t.Errorf("active = %d, want 5", c.ActivePorts())
	}
	if c.Discoveries() != 1 {
		t.Errorf("discoveries = %d, want 1", c.Discoveries())
	}

	// Active ports is a gauge; reported ports keeps growing.
	c.ComponentQueried(1)
	c.DiscoveryCompleted(1, time.Millisecond)
	if c.ActivePorts() != 1 {
		t.Errorf("active = %d, want 1", c.ActivePorts())
	}
	if c.PortsReported() != 6 {
		t.Errorf("ports reported = %d, want 6", c.PortsReported())
	}
}

func TestCollector_Errors(t *testing.T) {
	c := New()

	c.RecordError("first error")
	c.RecordError("second error")
	c.NonConforming()

	if c.ErrorCount() != 2 {
		t.Errorf("errors = %d, want 2", c.ErrorCount())
	}
	if c.NonConformingCount() != 1 {
		t.Errorf("non-conforming = %d, want 1", c.NonConformingCount())
	}
}

func TestCollector_Snapshot(t *testing.T) {
	c := New()
	c.ComponentRegistered()
	c.ComponentQueried(4)
	c.DiscoveryCompleted(4, 2*time.Millisecond)
	c.RecordError("test")

	snap := c.Snapshot()
	if snap.ComponentsRegistered != 1 {
		t.Errorf("snap registered = %d", snap.ComponentsRegistered)
	}
	if snap.ActivePorts != 4 {
		t.Errorf("snap active = %d", snap.ActivePorts)
	}
	if snap.LastDiscovery == "" || snap.LastDuration != "2ms" {
		t.Errorf("snap last discovery = %q / %q", snap.LastDiscovery, snap.LastDuration)
	}
	if snap.ErrorsTotal != 1 {
		t.Errorf("snap errors = %d", snap.ErrorsTotal)
	}
	if snap.LastErrorMessage != "test" {
		t.Errorf("snap error msg = %q", snap.LastErrorMessage)
	}
}

func TestCollector_JSON(t *testing.T) {
	c := New()
	c.ComponentQueried(42)

	raw := c.JSON()
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		t.Fatalf("JSON parse error: %v", err)
	}
	if snap.PortsReported != 42 {
		t.Errorf("JSON ports reported = %d", snap.PortsReported)
	}
	if snap.LastDiscovery != "" {
		t.Errorf("JSON last discovery should be omitted, got %q", snap.LastDiscovery)
	}
}

func TestCollector_Register(t *testing.T) {
	c := New()
	reg := prometheus.NewPedanticRegistry()
	if err := c.Register(reg); err != nil {
		t.Fatalf("Register: %v", err)
	}

	c.ComponentQueried(3)
	c.DiscoveryCompleted(3, time.Millisecond)

	expected := `
# HELP lports_active_ports Listen ports found by the last discovery pass.
# TYPE lports_active_ports gauge
lports_active_ports 3
# HELP lports_ports_reported_total Listen ports reported by components.
# TYPE lports_ports_reported_total counter
lports_ports_reported_total 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected),
		"lports_active_ports", "lports_ports_reported_total"); err != nil {
		t.Error(err)
	}

	if err := c.Register(reg); err == nil {
		t.Error("second registration should fail")
	}
}

func TestNilCollector_NoOps(t *testing.T) {
	var c *Collector

	// None of these should panic.
	c.ComponentRegistered()
	c.ComponentQueried(3)
	c.DiscoveryCompleted(3, time.Second)
	c.NonConforming()
	c.RecordError("test")

	if c.ActivePorts() != 0 {
		t.Error("nil collector should return 0")
	}
	if c.PortsReported() != 0 {
		t.Error("nil collector should return 0")
	}
	if c.ErrorCount() != 0 {
		t.Error("nil collector should return 0")
	}

	snap := c.Snapshot()
	if snap.Discoveries != 0 {
		t.Error("nil snapshot should be zero")
	}

	j := c.JSON()
	if j == "" {
		t.Error("nil JSON should return valid JSON")
	}
}
