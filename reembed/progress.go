package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports migration progress to a writer at a fixed
// document interval. Safe for concurrent use.
type ProgressTracker struct {
	mu       sync.Mutex
	writer   io.Writer
	total    int
	done     int
	interval int
	reported int
	began    time.Time
	running  bool
}

// NewProgressTracker reports every interval documents out of total,
// typically to os.Stderr.
func NewProgressTracker(writer io.Writer, total, interval int) *ProgressTracker {
	return &ProgressTracker{writer: writer, total: total, interval: interval}
}

// Start resets counters and begins tracking.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.began = time.Now()
	p.running = true
	p.done = 0
	p.reported = 0
}

// Update sets the completed count directly.
func (p *ProgressTracker) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.advance(done)
}

// Increment adds delta to the completed count.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.advance(p.done + delta)
}

// advance clamps the new count and reports when the interval is
// crossed. Callers hold the lock.
func (p *ProgressTracker) advance(done int) {
	if done > p.total {
		done = p.total
	}
	p.done = done
	if p.done-p.reported >= p.interval {
		p.report()
		p.reported = p.done
	}
}

// Finish forces the count to total and writes a final report line.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}
	p.done = p.total
	p.report()
	fmt.Fprintln(p.writer)
}

// Elapsed returns time since Start, or zero before Start.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return 0
	}
	return time.Since(p.began)
}

func (p *ProgressTracker) report() {
	elapsed := time.Since(p.began)
	rate := float64(p.done) / elapsed.Seconds()
	pct := 0.0
	if p.total > 0 {
		pct = float64(p.done) / float64(p.total) * 100.0
	}
	fmt.Fprintf(p.writer, "\rProgress: %d/%d (%.1f%%) - %.1f documents/s",
		p.done, p.total, pct, rate)
}
