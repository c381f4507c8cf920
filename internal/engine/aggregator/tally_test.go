package aggregator

import (
	"sync"
	"testing"

	"Go2PayloadScan/internal/engine/matcher"
	"Go2PayloadScan/internal/model"
)

func TestPartial_Match(t *testing.T) {
	set := matcher.CompileSet([]string{"http", "Linux"})
	p := NewPartial(set.Len())

	p.Match(set, model.Payload{Data: []byte("http://a http://b Linux")})
	p.Match(set, model.Invalid(model.TruncatedUDP))
	p.Match(set, model.Payload{Data: []byte{}})

	if p.Packets != 3 || p.Valid != 2 {
		t.Errorf("Expected 3 packets and 2 valid, got %d and %d", p.Packets, p.Valid)
	}
	if p.Invalid[model.TruncatedUDP] != 1 {
		t.Errorf("Expected 1 truncated_udp packet, got %d", p.Invalid[model.TruncatedUDP])
	}
	if p.Counts[0] != 2 || p.Counts[1] != 1 {
		t.Errorf("Expected counts [2 1], got %v", p.Counts)
	}

	p.Reset()
	if p.Packets != 0 || p.Counts[0] != 0 || p.Invalid[model.TruncatedUDP] != 0 {
		t.Errorf("Reset left state behind: %+v", p)
	}
}

func TestGlobal_ConcurrentMerge(t *testing.T) {
	// 1. Build one partial per worker.
	const workers = 8
	set := matcher.CompileSet([]string{"NOTIFY"})
	g := NewGlobal(set.Len())

	var wg sync.WaitGroup
	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer wg.Done()
			p := NewPartial(set.Len())
			for j := 0; j < 100; j++ {
				p.Match(set, model.Payload{Data: []byte("NOTIFY NOTIFY")})
			}
			p.Match(set, model.Invalid(model.WrongProtocol))
			g.Merge(p)
		}()
	}
	wg.Wait()

	// 2. Totals are the sum of all partials.
	if got := g.Counts()[0]; got != workers*200 {
		t.Errorf("Expected %d matches, got %d", workers*200, got)
	}
	stats := g.Stats()
	if stats.Packets != workers*101 || stats.Valid != workers*100 {
		t.Errorf("Unexpected packet counters: %+v", stats)
	}
	if stats.Invalid[model.WrongProtocol] != workers || len(stats.Invalid) != 1 {
		t.Errorf("Unexpected invalid counters: %v", stats.Invalid)
	}
	if stats.Units != workers || g.Merges() != workers {
		t.Errorf("Expected %d merged units, got %d", workers, stats.Units)
	}
}

func TestGlobal_CountsIsCopy(t *testing.T) {
	g := NewGlobal(1)
	c := g.Counts()
	c[0] = 42
	if g.Counts()[0] != 0 {
		t.Error("Counts must return a copy")
	}
}
