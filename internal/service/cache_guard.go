package service

import "sync"

// fillGuard stops a read that started before an update from putting the old
// row back into the cache after the update invalidated it.
type fillGuard struct {
	mu  sync.Mutex
	gen map[uint]uint64
}

func newFillGuard() *fillGuard {
	return &fillGuard{gen: make(map[uint]uint64)}
}

// begin returns the generation to pass to fill once the row has been read.
func (g *fillGuard) begin(id uint) uint64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.gen[id]
}

// invalidate marks every read begun so far as stale. Call it after the write
// is stored, then delete the cache entry.
func (g *fillGuard) invalidate(id uint) {
	g.mu.Lock()
	g.gen[id]++
	g.mu.Unlock()
}

// fill runs set unless id was invalidated since gen was taken. It reports
// whether set ran.
func (g *fillGuard) fill(id uint, gen uint64, set func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.gen[id] != gen {
		return false
	}
	set()
	return true
}
