package partition

import (
	"sync"
	"testing"
)

func TestStatic_Coverage(t *testing.T) {
	for _, count := range []int{0, 1, 7, 10, 100, 101} {
		for _, workers := range []int{1, 2, 3, 4, 16} {
			ranges, err := Static(count, workers)
			if err != nil {
				t.Fatalf("Static(%d, %d) failed: %v", count, workers, err)
			}
			if len(ranges) != workers {
				t.Fatalf("Static(%d, %d) returned %d ranges", count, workers, len(ranges))
			}

			next := 0
			for rank, r := range ranges {
				if r.Owner != rank || r.Start != next || r.End < r.Start {
					t.Fatalf("Static(%d, %d): bad range %d: %+v", count, workers, rank, r)
				}
				want := count / workers
				if rank == 0 {
					want += count % workers
				}
				if r.Len() != want {
					t.Errorf("Static(%d, %d): rank %d has %d packets, want %d", count, workers, rank, r.Len(), want)
				}
				next = r.End
			}
			if next != count {
				t.Errorf("Static(%d, %d) covers %d packets", count, workers, next)
			}
		}
	}
}

func TestStatic_Remainder(t *testing.T) {
	ranges, _ := Static(10, 3)
	want := []Range{{0, 0, 4}, {1, 4, 7}, {2, 7, 10}}
	for i := range want {
		if ranges[i] != want[i] {
			t.Errorf("rank %d: got %+v, want %+v", i, ranges[i], want[i])
		}
	}
}

func TestStatic_Invalid(t *testing.T) {
	if _, err := Static(10, 0); err == nil {
		t.Error("Expected an error for zero workers")
	}
	if _, err := Static(-1, 2); err == nil {
		t.Error("Expected an error for a negative count")
	}
}

func TestGuided_ShrinkingChunks(t *testing.T) {
	g := NewGuided(1000, 4, 8)

	prev, next := 1<<31, 0
	for {
		start, end, ok := g.Next()
		if !ok {
			break
		}
		if start != next {
			t.Fatalf("Expected chunk to start at %d, got %d", next, start)
		}
		if size := end - start; size > prev {
			t.Errorf("Chunk size grew from %d to %d", prev, size)
		} else {
			prev = size
		}
		next = end
	}
	if next != 1000 {
		t.Errorf("Expected 1000 indexes handed out, got %d", next)
	}
}

func TestGuided_ConcurrentDisjoint(t *testing.T) {
	const total = 10007
	g := NewGuided(total, 8, 1)
	seen := make([]int32, total)

	var wg sync.WaitGroup
	wg.Add(8)
	for w := 0; w < 8; w++ {
		go func() {
			defer wg.Done()
			for {
				start, end, ok := g.Next()
				if !ok {
					return
				}
				for i := start; i < end; i++ {
					seen[i]++
				}
			}
		}()
	}
	wg.Wait()

	for i, n := range seen {
		if n != 1 {
			t.Fatalf("index %d handed out %d times", i, n)
		}
	}
}

func TestGuided_Empty(t *testing.T) {
	g := NewGuided(0, 4, 1)
	if _, _, ok := g.Next(); ok {
		t.Error("Expected no chunk from an empty scheduler")
	}
}
