// Package aggregator combines per-worker match counts and packet counters into run totals.
package aggregator

import (
	"sync"

	"Go2PayloadScan/internal/engine/matcher"
	"Go2PayloadScan/internal/model"
)

// Partial is the private tally of one worker, partition or batch. It is not safe for concurrent use.
type Partial struct {
	Counts  []int64
	Packets int64
	Valid   int64
	Invalid [model.NumReasons]int64
}

// NewPartial creates a zeroed tally for n patterns.
func NewPartial(n int) *Partial {
	return &Partial{Counts: make([]int64, n)}
}

// Observe records one packet's extraction outcome without matching it.
func (p *Partial) Observe(payload model.Payload) {
	p.Packets++
	if payload.Valid() {
		p.Valid++
		return
	}
	p.Invalid[payload.Reason]++
}

// Match records the packet and, if it carries a payload, adds its pattern occurrences.
// Invalid packets contribute zero matches.
func (p *Partial) Match(set *matcher.Set, payload model.Payload) {
	p.Observe(payload)
	if payload.Valid() {
		set.CountInto(payload.Data, p.Counts)
	}
}

// Reset zeroes the tally so it can be reused for another batch.
func (p *Partial) Reset() {
	for i := range p.Counts {
		p.Counts[i] = 0
	}
	p.Packets, p.Valid = 0, 0
	p.Invalid = [model.NumReasons]int64{}
}

// Global is the run-wide tally. Merge may be called from many goroutines.
type Global struct {
	mu      sync.Mutex
	counts  []int64
	packets int64
	valid   int64
	invalid [model.NumReasons]int64
	merges  int
}

// NewGlobal creates a zeroed global tally for n patterns.
func NewGlobal(n int) *Global {
	return &Global{counts: make([]int64, n)}
}

// Merge adds a partial tally into the global one. Each call counts as one merged unit.
func (g *Global) Merge(p *Partial) {
	g.mu.Lock()
	defer g.mu.Unlock()

	for i, c := range p.Counts {
		g.counts[i] += c
	}
	g.packets += p.Packets
	g.valid += p.Valid
	for r, n := range p.Invalid {
		g.invalid[r] += n
	}
	g.merges++
}

// Counts returns a copy of the per-pattern totals.
func (g *Global) Counts() []int64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]int64(nil), g.counts...)
}

// Merges returns how many partial tallies have been merged so far.
func (g *Global) Merges() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.merges
}

// Stats returns the packet counters. Only reasons that occurred appear in Invalid.
func (g *Global) Stats() model.Stats {
	g.mu.Lock()
	defer g.mu.Unlock()

	invalid := make(map[model.InvalidReason]int64)
	for r, n := range g.invalid {
		if n > 0 {
			invalid[model.InvalidReason(r)] = n
		}
	}
	return model.Stats{
		Packets: g.packets,
		Valid:   g.valid,
		Invalid: invalid,
		Units:   g.merges,
	}
}
