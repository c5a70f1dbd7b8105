package cache

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestGetOrCreate(t *testing.T) {
	c := New[int, string](0)
	calls := 0
	for range 3 {
		got := c.GetOrCreate(7, func() string { calls++; return "seven" })
		if got != "seven" {
			t.Fatalf("GetOrCreate = %q", got)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	if s := c.Stats(); s.Len != 1 || s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, int](4)
	for i := range 4 {
		c.Set(i, i)
	}
	// Touch 0 so 1 becomes the oldest.
	if _, ok := c.Get(0); !ok {
		t.Fatal("0 missing")
	}
	c.Set(4, 4)

	if s := c.Stats(); s.Len != 3 {
		t.Fatalf("Len after eviction = %d, want 3", s.Len)
	}
	for _, k := range []int{0, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("recently used key %d evicted", k)
		}
	}
	if _, ok := c.Get(1); ok {
		t.Error("oldest key 1 survived")
	}
}

func TestClear(t *testing.T) {
	c := New[string, int](8)
	c.Set("a", 1)
	c.Clear()
	if _, ok := c.Get("a"); ok {
		t.Error("entry survived Clear")
	}
	if s := c.Stats(); s.Len != 0 || s.Hits != 0 || s.Misses != 1 {
		t.Errorf("Stats = %+v", s)
	}
}

func TestConcurrentCreateOnce(t *testing.T) {
	c := New[int, int](16)
	var calls atomic.Int32
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.GetOrCreate(1, func() int { calls.Add(1); return 1 })
		}()
	}
	wg.Wait()
	if n := calls.Load(); n != 1 {
		t.Errorf("create ran %d times", n)
	}
}
