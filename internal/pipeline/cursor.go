package pipeline

import (
	"sync"
	"time"
)

// Cursors holds the last successful completion time of each pipeline. Only
// the orchestrators write them; the status boundary reads them.
type Cursors struct {
	mu     sync.RWMutex
	news   time.Time
	market time.Time
}

func NewCursors() *Cursors {
	return &Cursors{}
}

func (c *Cursors) AdvanceNews(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.news = t
}

func (c *Cursors) AdvanceMarket(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.market = t
}

func (c *Cursors) News() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.news
}

func (c *Cursors) Market() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.market
}
