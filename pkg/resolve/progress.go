package resolve

import (
	"sync"
)

// Progress counts completed root resolutions.
type Progress interface {
	// SetTotal starts a new batch of n tasks.
	SetTotal(n int)
	// Increment records one completed task.
	Increment()
}

// Reporter receives progress updates from a Counter.
type Reporter interface {
	Update(done, total int)
	Finish(total int)
}

// Counter is a Progress that forwards every change to a Reporter and signals
// Finish once when the count reaches the total. Safe for concurrent use.
type Counter struct {
	mu       sync.Mutex
	done     int
	total    int
	finished bool
	reporter Reporter
}

// NewCounter creates a Counter reporting to r. A nil r only counts.
func NewCounter(r Reporter) *Counter {
	return &Counter{reporter: r}
}

// SetTotal resets the counter for a batch of n tasks. An empty batch
// finishes immediately.
func (c *Counter) SetTotal(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done, c.total, c.finished = 0, n, false
	c.report()
}

// Increment records one completed task.
func (c *Counter) Increment() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.done++
	c.report()
}

// Done returns the completed count and the total.
func (c *Counter) Done() (done, total int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.done, c.total
}

// Finished reports whether the current batch has signalled completion.
func (c *Counter) Finished() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.finished
}

func (c *Counter) report() {
	if c.reporter != nil {
		c.reporter.Update(c.done, c.total)
	}
	if c.done >= c.total && !c.finished {
		c.finished = true
		if c.reporter != nil {
			c.reporter.Finish(c.total)
		}
	}
}

type noopProgress struct{}

func (noopProgress) SetTotal(int) {}
func (noopProgress) Increment()   {}
