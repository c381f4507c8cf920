// Package partition splits an indexed sequence of packets among workers.
package partition

import "fmt"

// Range is the half-open interval [Start, End) of packet indexes owned by one worker.
type Range struct {
	Owner int
	Start int
	End   int
}

// Len returns the number of packets in the range.
func (r Range) Len() int {
	return r.End - r.Start
}

// Static divides count packets into workers contiguous ranges in rank order.
// Every rank gets count/workers packets and rank 0 additionally takes the remainder.
func Static(count, workers int) ([]Range, error) {
	if workers < 1 {
		return nil, fmt.Errorf("worker count must be at least 1, got %d", workers)
	}
	if count < 0 {
		return nil, fmt.Errorf("packet count must not be negative, got %d", count)
	}

	base, rem := count/workers, count%workers
	ranges := make([]Range, workers)
	start := 0
	for rank := 0; rank < workers; rank++ {
		n := base
		if rank == 0 {
			n += rem
		}
		ranges[rank] = Range{Owner: rank, Start: start, End: start + n}
		start += n
	}
	return ranges, nil
}
