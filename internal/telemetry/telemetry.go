// Package telemetry records per-stage and per-tool counters for the turn
// engine plus cache hit/miss accounting. It is write-mostly and must never
// block or fail the orchestrator: every method is safe on a nil Collector
// and recording errors are swallowed.
package telemetry

import (
	"sync"
	"time"
)

// OpStats aggregates one stage or tool.
type OpStats struct {
	Invocations int64         `json:"invocations"`
	Errors      int64         `json:"errors"`
	TotalTime   time.Duration `json:"total_time_ns"`
}

// AvgTime returns the mean duration per invocation.
func (s OpStats) AvgTime() time.Duration {
	if s.Invocations == 0 {
		return 0
	}
	return s.TotalTime / time.Duration(s.Invocations)
}

// Snapshot is a point-in-time copy of all counters.
type Snapshot struct {
	Stages      map[string]OpStats `json:"stages"`
	Tools       map[string]OpStats `json:"tools"`
	CacheHits   int64              `json:"cache_hits"`
	CacheMisses int64              `json:"cache_misses"`
}

// Collector accumulates counters. The zero value is not usable; construct
// with NewCollector. A nil *Collector is a valid no-op recorder.
type Collector struct {
	mu          sync.Mutex
	stages      map[string]*OpStats
	tools       map[string]*OpStats
	cacheHits   int64
	cacheMisses int64
}

// NewCollector creates an empty collector.
func NewCollector() *Collector {
	return &Collector{
		stages: make(map[string]*OpStats),
		tools:  make(map[string]*OpStats),
	}
}

// RecordStage records one stage execution.
func (c *Collector) RecordStage(stage string, d time.Duration, failed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	record(c.stages, stage, d, failed)
}

// RecordTool records one tool invocation.
func (c *Collector) RecordTool(tool string, d time.Duration, failed bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	record(c.tools, tool, d, failed)
}

// RecordCache records a cache access outcome.
func (c *Collector) RecordCache(hit bool) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if hit {
		c.cacheHits++
	} else {
		c.cacheMisses++
	}
}

func record(m map[string]*OpStats, key string, d time.Duration, failed bool) {
	s, ok := m[key]
	if !ok {
		s = &OpStats{}
		m[key] = s
	}
	s.Invocations++
	s.TotalTime += d
	if failed {
		s.Errors++
	}
}

// Snapshot returns a copy of all counters for the stats endpoint.
func (c *Collector) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{Stages: map[string]OpStats{}, Tools: map[string]OpStats{}}
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	out := Snapshot{
		Stages:      make(map[string]OpStats, len(c.stages)),
		Tools:       make(map[string]OpStats, len(c.tools)),
		CacheHits:   c.cacheHits,
		CacheMisses: c.cacheMisses,
	}
	for k, v := range c.stages {
		out.Stages[k] = *v
	}
	for k, v := range c.tools {
		out.Tools[k] = *v
	}
	return out
}
