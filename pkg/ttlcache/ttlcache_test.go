package ttlcache

import (
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New(time.Second)
	c.Set("lc:alice", "report")

	got, ok := c.Get("lc:alice")
	if !ok {
		t.Fatal("Get() after Set() returned absent")
	}
	if got != "report" {
		t.Errorf("Get() = %v, want %q", got, "report")
	}
}

func TestExpiry(t *testing.T) {
	now := time.Now()
	c := New(time.Second)
	c.now = func() time.Time { return now }

	c.Set("lc:alice", "report")

	// Still fresh just before the deadline.
	now = now.Add(900 * time.Millisecond)
	if _, ok := c.Get("lc:alice"); !ok {
		t.Fatal("entry expired before its TTL")
	}

	// Past the deadline the entry is gone and removed.
	now = now.Add(200 * time.Millisecond)
	if _, ok := c.Get("lc:alice"); ok {
		t.Fatal("entry survived past its TTL")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d after lazy eviction, want 0", c.Len())
	}
}

func TestSetOverwrites(t *testing.T) {
	now := time.Now()
	c := New(time.Second)
	c.now = func() time.Time { return now }

	c.Set("k", "old")
	now = now.Add(800 * time.Millisecond)
	c.Set("k", "new")

	// The overwrite reset the expiry, so the entry outlives the first deadline.
	now = now.Add(500 * time.Millisecond)
	got, ok := c.Get("k")
	if !ok {
		t.Fatal("overwritten entry expired on the old deadline")
	}
	if got != "new" {
		t.Errorf("Get() = %v, want %q", got, "new")
	}
}

func TestNamespacedKeys(t *testing.T) {
	c := New(time.Minute)
	c.Set("lc:alice", "leetcode")
	c.Set("cf:alice", "codeforces")

	if got, _ := c.Get("lc:alice"); got != "leetcode" {
		t.Errorf("Get(lc:alice) = %v, want %q", got, "leetcode")
	}
	if got, _ := c.Get("cf:alice"); got != "codeforces" {
		t.Errorf("Get(cf:alice) = %v, want %q", got, "codeforces")
	}
}

func TestClear(t *testing.T) {
	c := New(time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)

	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() = %d after Clear(), want 0", c.Len())
	}
	if _, ok := c.Get("a"); ok {
		t.Error("Get() returned a value after Clear()")
	}
}
