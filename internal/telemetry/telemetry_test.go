package telemetry

import (
	"sync"
	"testing"
	"time"
)

func TestRecordStageAggregates(t *testing.T) {
	c := NewCollector()

	c.RecordStage("plan", 100*time.Millisecond, false)
	c.RecordStage("plan", 300*time.Millisecond, true)
	c.RecordStage("finalize", 10*time.Millisecond, false)

	snap := c.Snapshot()
	plan := snap.Stages["plan"]
	if plan.Invocations != 2 {
		t.Errorf("invocations = %d, want 2", plan.Invocations)
	}
	if plan.Errors != 1 {
		t.Errorf("errors = %d, want 1", plan.Errors)
	}
	if plan.TotalTime != 400*time.Millisecond {
		t.Errorf("total = %v", plan.TotalTime)
	}
	if plan.AvgTime() != 200*time.Millisecond {
		t.Errorf("avg = %v, want 200ms", plan.AvgTime())
	}
	if snap.Stages["finalize"].Invocations != 1 {
		t.Error("finalize not recorded")
	}
}

func TestRecordCacheCounters(t *testing.T) {
	c := NewCollector()
	c.RecordCache(true)
	c.RecordCache(true)
	c.RecordCache(false)

	snap := c.Snapshot()
	if snap.CacheHits != 2 || snap.CacheMisses != 1 {
		t.Errorf("hits/misses = %d/%d, want 2/1", snap.CacheHits, snap.CacheMisses)
	}
}

func TestNilCollectorIsNoOp(t *testing.T) {
	var c *Collector
	c.RecordStage("plan", time.Second, false)
	c.RecordTool("log_weight", time.Second, true)
	c.RecordCache(true)

	snap := c.Snapshot()
	if len(snap.Stages) != 0 || len(snap.Tools) != 0 {
		t.Error("nil collector snapshot should be empty")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	c := NewCollector()
	c.RecordTool("log_weight", time.Millisecond, false)

	snap := c.Snapshot()
	snap.Tools["log_weight"] = OpStats{Invocations: 99}

	if c.Snapshot().Tools["log_weight"].Invocations != 1 {
		t.Error("mutating a snapshot must not affect the collector")
	}
}

func TestConcurrentRecording(t *testing.T) {
	c := NewCollector()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.RecordStage("plan", time.Millisecond, false)
			c.RecordTool("log_weight", time.Millisecond, false)
			c.RecordCache(true)
		}()
	}
	wg.Wait()

	snap := c.Snapshot()
	if snap.Stages["plan"].Invocations != 50 {
		t.Errorf("stage invocations = %d, want 50", snap.Stages["plan"].Invocations)
	}
	if snap.Tools["log_weight"].Invocations != 50 {
		t.Errorf("tool invocations = %d, want 50", snap.Tools["log_weight"].Invocations)
	}
	if snap.CacheHits != 50 {
		t.Errorf("cache hits = %d, want 50", snap.CacheHits)
	}
}

func TestAvgTimeZeroInvocations(t *testing.T) {
	var s OpStats
	if s.AvgTime() != 0 {
		t.Error("avg of zero invocations should be 0")
	}
}
