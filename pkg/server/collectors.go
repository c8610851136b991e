package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/decred/slog"
	"github.com/pbnjay/memory"
	"github.com/prometheus/procfs"
)

// ResourceSample is one point-in-time reading of the process's resource
// usage, sampled periodically; WorkerPoolSize and QueueDepth are derived
// from it.
type ResourceSample struct {
	Timestamp    time.Time
	TotalSystemMemory uint64
	ProcessRSS   uint64
	ProcessUTime float64
	ProcessSTime float64
}

// ResourceCollector periodically samples process/system resource usage and
// derives the proof-verification worker-pool size and per-room
// verification-queue depth from it, re-deriving both on every sample so a
// coordinator that starts small and is later given more memory (or starts
// to thrash) adapts without a restart.
type ResourceCollector struct {
	log  slog.Logger
	proc procfs.Proc

	mu           sync.RWMutex
	last         ResourceSample
	minWorkers   int64
	maxWorkers   int64
	memPerWorker uint64 // approximate bytes budgeted per verification worker
}

// perWorkerMemoryBudget is a conservative estimate of the working-set
// memory one concurrent Groth16 verification can need (witness + proof +
// verifying key, well under this in practice; left generous to avoid
// oversizing the pool on constrained hosts).
const perWorkerMemoryBudget = 256 * 1024 * 1024

// NewResourceCollector constructs a collector bounded to [minWorkers,
// maxWorkers]; both default to 2 if <= 0.
func NewResourceCollector(log slog.Logger, minWorkers, maxWorkers int64) (*ResourceCollector, error) {
	if minWorkers <= 0 {
		minWorkers = 2
	}
	if maxWorkers <= 0 {
		maxWorkers = 2
	}
	if maxWorkers < minWorkers {
		maxWorkers = minWorkers
	}

	proc, err := procfs.Self()
	if err != nil {
		return nil, fmt.Errorf("server: open /proc/self: %w", err)
	}

	c := &ResourceCollector{
		log:          log,
		proc:         proc,
		minWorkers:   minWorkers,
		maxWorkers:   maxWorkers,
		memPerWorker: perWorkerMemoryBudget,
	}
	c.sample()
	return c, nil
}

// Run samples resource usage every interval until ctx-like stop channel
// closes. Call in its own goroutine.
func (c *ResourceCollector) Run(stop <-chan struct{}, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			c.sample()
		}
	}
}

func (c *ResourceCollector) sample() {
	stat, err := c.proc.Stat()
	sample := ResourceSample{
		Timestamp:         time.Now(),
		TotalSystemMemory: memory.TotalMemory(),
	}
	if err != nil {
		c.log.Warnf("server: sample process stats: %v", err)
	} else {
		sample.ProcessRSS = uint64(stat.ResidentMemory())
		sample.ProcessUTime = stat.UTime
		sample.ProcessSTime = stat.STime
	}

	c.mu.Lock()
	c.last = sample
	c.mu.Unlock()
}

// Last returns the most recent sample.
func (c *ResourceCollector) Last() ResourceSample {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}

// WorkerPoolSize derives how many concurrent Groth16 verifications the
// process should allow, from total system memory, clamped to
// [minWorkers, maxWorkers].
func (c *ResourceCollector) WorkerPoolSize() int64 {
	c.mu.RLock()
	total := c.last.TotalSystemMemory
	c.mu.RUnlock()

	if total == 0 || c.memPerWorker == 0 {
		return c.minWorkers
	}
	n := int64(total / c.memPerWorker)
	if n < c.minWorkers {
		return c.minWorkers
	}
	if n > c.maxWorkers {
		return c.maxWorkers
	}
	return n
}

// QueueDepth is a per-room pending-verification backlog size, four per
// worker. The server does not apply it or WorkerPoolSize: the verifier's
// worker count comes from its constructor argument, submissions are
// verified inline, and none is rejected BUSY.
func (c *ResourceCollector) QueueDepth() int {
	return int(c.WorkerPoolSize()) * 4
}
