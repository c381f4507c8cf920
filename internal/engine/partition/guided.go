package partition

import "sync/atomic"

// Guided hands out shrinking chunks of [0, total) to workers on demand.
// Each chunk is the remaining work divided by the number of workers, never smaller than
// minChunk (except for the final one). Next is safe for concurrent use.
type Guided struct {
	total    int64
	workers  int64
	minChunk int64
	cursor   atomic.Int64
}

// NewGuided creates a scheduler. workers and minChunk below 1 are treated as 1.
func NewGuided(total, workers, minChunk int) *Guided {
	if workers < 1 {
		workers = 1
	}
	if minChunk < 1 {
		minChunk = 1
	}
	return &Guided{total: int64(total), workers: int64(workers), minChunk: int64(minChunk)}
}

// Next claims the next chunk. ok is false once every index has been handed out.
func (g *Guided) Next() (start, end int, ok bool) {
	for {
		cur := g.cursor.Load()
		remaining := g.total - cur
		if remaining <= 0 {
			return 0, 0, false
		}
		chunk := (remaining + g.workers - 1) / g.workers
		if chunk < g.minChunk {
			chunk = g.minChunk
		}
		if chunk > remaining {
			chunk = remaining
		}
		if g.cursor.CompareAndSwap(cur, cur+chunk) {
			return int(cur), int(cur + chunk), true
		}
	}
}
