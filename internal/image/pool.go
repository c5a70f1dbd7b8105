package image

import "sync"

// Pool recycles planes by size. Mip generation and resizing create many
// short-lived planes of a handful of sizes.
type Pool struct {
	mu    sync.Mutex
	free  map[[2]int][]*Plane
	limit int
}

// NewPool returns a pool keeping at most limit idle planes per size, or
// any number when limit is 0.
func NewPool(limit int) *Pool {
	return &Pool{free: make(map[[2]int][]*Plane), limit: limit}
}

// Get returns a zeroed width x height plane, or nil for non-positive
// sizes.
func (p *Pool) Get(width, height int) *Plane {
	k := [2]int{width, height}
	p.mu.Lock()
	if n := len(p.free[k]); n > 0 {
		pl := p.free[k][n-1]
		p.free[k] = p.free[k][:n-1]
		p.mu.Unlock()
		pl.Clear()
		return pl
	}
	p.mu.Unlock()

	pl, err := NewPlane(width, height)
	if err != nil {
		return nil
	}
	return pl
}

// Put gives pl back to the pool. pl must not be used afterwards.
func (p *Pool) Put(pl *Plane) {
	if pl == nil {
		return
	}
	k := [2]int{pl.width, pl.height}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.limit == 0 || len(p.free[k]) < p.limit {
		p.free[k] = append(p.free[k], pl)
	}
}

var defaultPool = NewPool(8)

// GetFromDefault takes a plane from the package pool.
func GetFromDefault(width, height int) *Plane { return defaultPool.Get(width, height) }

// PutToDefault returns a plane to the package pool.
func PutToDefault(pl *Plane) { defaultPool.Put(pl) }
