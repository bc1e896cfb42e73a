package cache

import (
	"sync"
	"testing"
)

func TestCacheGetSet(t *testing.T) {
	c := New[string, int](10)

	if _, ok := c.Get("missing"); ok {
		t.Error("Get on empty cache reported a hit")
	}
	c.Set("a", 1)
	c.Set("a", 2)
	if v, ok := c.Get("a"); !ok || v != 2 {
		t.Errorf("Get(a) = %d, %v; want 2, true", v, ok)
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
}

func TestCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := New[int, string](3)
	c.Set(1, "one")
	c.Set(2, "two")
	c.Set(3, "three")

	// Touch 1 so 2 becomes the oldest.
	c.Get(1)
	c.Set(4, "four")

	if _, ok := c.Get(2); ok {
		t.Error("least recently used entry survived eviction")
	}
	for _, k := range []int{1, 3, 4} {
		if _, ok := c.Get(k); !ok {
			t.Errorf("entry %d evicted", k)
		}
	}
	if s := c.Stats(); s.Evictions != 1 || s.Len != 3 {
		t.Errorf("Stats = %+v, want 1 eviction and 3 entries", s)
	}
}

func TestCacheGetOrCreate(t *testing.T) {
	c := New[string, int](0)
	calls := 0
	create := func() int {
		calls++
		return 42
	}

	for i := 0; i < 3; i++ {
		if v := c.GetOrCreate("k", create); v != 42 {
			t.Fatalf("GetOrCreate = %d", v)
		}
	}
	if calls != 1 {
		t.Errorf("create called %d times, want 1", calls)
	}
	s := c.Stats()
	if s.Hits != 2 || s.Misses != 1 {
		t.Errorf("Stats = %+v, want 2 hits 1 miss", s)
	}
	if s.HitRate < 0.66 || s.HitRate > 0.67 {
		t.Errorf("HitRate = %v", s.HitRate)
	}
}

func TestCacheDeleteClear(t *testing.T) {
	c := New[int, int](5)
	for i := 0; i < 5; i++ {
		c.Set(i, i)
	}
	if !c.Delete(2) || c.Delete(2) {
		t.Error("Delete should succeed once")
	}
	if c.Len() != 4 {
		t.Errorf("Len = %d, want 4", c.Len())
	}

	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len after Clear = %d", c.Len())
	}
	c.Set(9, 9)
	if v, ok := c.Get(9); !ok || v != 9 {
		t.Error("cache unusable after Clear")
	}
}

func TestCacheConcurrent(t *testing.T) {
	c := New[int, int](16)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				c.GetOrCreate((g*7+i)%32, func() int { return i })
			}
		}(g)
	}
	wg.Wait()
	if c.Len() > 16 {
		t.Errorf("Len = %d exceeds capacity", c.Len())
	}
}
