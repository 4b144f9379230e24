package metrics

import (
	"testing"
	"time"
)

// BenchmarkCollector_ComponentQueried measures the overhead of
// recording one component query (atomic operations).
func BenchmarkCollector_ComponentQueried(b *testing.B) {
	c := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ComponentQueried(2)
	}
}

// BenchmarkCollector_Snapshot measures the cost of taking a snapshot.
func BenchmarkCollector_Snapshot(b *testing.B) {
	c := New()
	c.ComponentQueried(4)
	c.DiscoveryCompleted(4, time.Millisecond)
	c.RecordError("test")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = c.Snapshot()
	}
}

// BenchmarkNilCollector verifies nil-safe no-ops have zero overhead.
func BenchmarkNilCollector(b *testing.B) {
	var c *Collector
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.ComponentQueried(2)
		c.NonConforming()
		c.RecordError("test")
	}
}
