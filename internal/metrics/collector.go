// Package metrics provides in-memory runtime statistics collection.
package metrics

import (
	"math"
	"sync"
	"time"
)

// Operation names for the collector.
const (
	OpEmbedding       = "embedding"
	OpCompletion      = "completion"
	OpDirectoryLookup = "directory_lookup"
	OpStoreQuery      = "store_query"
	OpRetrieval       = "retrieval"
)

// OperationMetrics holds aggregated metrics for a single operation type.
type OperationMetrics struct {
	Count     int64
	Errors    int64
	TotalTime time.Duration
	MinTime   time.Duration
	MaxTime   time.Duration
}

// OperationSnapshot provides computed stats from raw metrics.
type OperationSnapshot struct {
	Count       int64
	Errors      int64
	TotalTimeMs int64
	AvgTimeMs   float64
	MinTimeMs   int64
	MaxTimeMs   int64
}

// Snapshot is the full set of assistant statistics at a point in time.
type Snapshot struct {
	UptimeSeconds   float64
	Embedding       *OperationSnapshot
	Completion      *OperationSnapshot
	DirectoryLookup *OperationSnapshot
	StoreQuery      *OperationSnapshot
	Retrieval       *OperationSnapshot
}

// Collector aggregates in-memory runtime statistics.
// All methods are thread-safe.
type Collector struct {
	mu        sync.RWMutex
	startTime time.Time
	ops       map[string]*OperationMetrics
}

func NewCollector() *Collector {
	return &Collector{
		startTime: time.Now(),
		ops:       make(map[string]*OperationMetrics),
	}
}

// getOrCreate returns existing metrics or creates new ones for an
// operation. Caller must hold the write lock.
func (c *Collector) getOrCreate(op string) *OperationMetrics {
	m, ok := c.ops[op]
	if !ok {
		m = &OperationMetrics{MinTime: time.Duration(math.MaxInt64)}
		c.ops[op] = m
	}
	return m
}

// Record records one call of an operation. err may be nil.
func (c *Collector) Record(op string, duration time.Duration, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	m := c.getOrCreate(op)
	m.Count++
	m.TotalTime += duration
	if err != nil {
		m.Errors++
	}

	if duration < m.MinTime {
		m.MinTime = duration
	}
	if duration > m.MaxTime {
		m.MaxTime = duration
	}
}

// Timed runs fn, recording its duration and error under op.
func (c *Collector) Timed(op string, fn func() error) error {
	start := time.Now()
	err := fn()
	c.Record(op, time.Since(start), err)
	return err
}

// snapshotOp creates a snapshot for an operation, nil if no data.
func snapshotOp(m *OperationMetrics) *OperationSnapshot {
	if m == nil || m.Count == 0 {
		return nil
	}
	return &OperationSnapshot{
		Count:       m.Count,
		Errors:      m.Errors,
		TotalTimeMs: m.TotalTime.Milliseconds(),
		AvgTimeMs:   float64(m.TotalTime.Milliseconds()) / float64(m.Count),
		MinTimeMs:   m.MinTime.Milliseconds(),
		MaxTimeMs:   m.MaxTime.Milliseconds(),
	}
}

// Snapshot returns a point-in-time snapshot of all metrics.
func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return Snapshot{
		UptimeSeconds:   time.Since(c.startTime).Seconds(),
		Embedding:       snapshotOp(c.ops[OpEmbedding]),
		Completion:      snapshotOp(c.ops[OpCompletion]),
		DirectoryLookup: snapshotOp(c.ops[OpDirectoryLookup]),
		StoreQuery:      snapshotOp(c.ops[OpStoreQuery]),
		Retrieval:       snapshotOp(c.ops[OpRetrieval]),
	}
}
