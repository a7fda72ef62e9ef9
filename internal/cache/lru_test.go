package cache

import (
	"testing"
	"time"
)

func TestLRUEvictsOldest(t *testing.T) {
	c := NewLRU[int](2, time.Minute)
	c.Set("2025-01", 1)
	c.Set("2025-02", 2)

	// Touch 2025-01 so 2025-02 becomes the eviction candidate.
	if _, ok := c.Get("2025-01"); !ok {
		t.Fatal("expected 2025-01 present")
	}
	c.Set("2025-03", 3)

	if _, ok := c.Get("2025-02"); ok {
		t.Error("expected 2025-02 evicted")
	}
	if _, ok := c.Get("2025-01"); !ok {
		t.Error("expected 2025-01 retained")
	}
	if got := c.Size(); got != 2 {
		t.Errorf("Size() = %d, want 2", got)
	}
}

func TestLRUExpiry(t *testing.T) {
	c := NewLRU[string](10, 10*time.Millisecond)
	c.Set("k", "v")
	time.Sleep(20 * time.Millisecond)

	if _, ok := c.Get("k"); ok {
		t.Error("expected expired entry to miss")
	}
	c.Set("a", "1")
	c.Set("b", "2")
	time.Sleep(20 * time.Millisecond)
	if n := c.CleanExpired(); n != 2 {
		t.Errorf("CleanExpired() = %d, want 2", n)
	}
}

func TestLRUDeleteAndClear(t *testing.T) {
	c := NewLRU[int](10, time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.Delete("a")
	if _, ok := c.Get("a"); ok {
		t.Error("expected a deleted")
	}
	c.Clear()
	if got := c.Size(); got != 0 {
		t.Errorf("Size() after Clear = %d, want 0", got)
	}
}
