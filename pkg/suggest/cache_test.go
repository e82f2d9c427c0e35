package suggest

import "testing"

func TestHotCacheGetPut(t *testing.T) {
	hc := NewHotCache(4)

	if _, ok := hc.Get("ni"); ok {
		t.Fatal("empty cache reported a hit")
	}

	hc.Put("ni", []Candidate{{"你", "you", 100}})
	got, ok := hc.Get("ni")
	if !ok || len(got) != 1 || got[0].Text != "你" {
		t.Fatalf("Get(ni) = %v, %v", got, ok)
	}

	got[0].Text = "changed"
	if again, _ := hc.Get("ni"); again[0].Text != "你" {
		t.Error("cached slice was shared with the caller")
	}

	stats := hc.Stats()
	if stats["hotCacheHits"] != 2 || stats["hotCacheMisses"] != 1 {
		t.Errorf("unexpected stats: %v", stats)
	}
}

func TestHotCacheInvalidate(t *testing.T) {
	hc := NewHotCache(8)
	for _, p := range []string{"n", "ni", "nih", "h", "ha"} {
		hc.Put(p, nil)
	}

	removed := hc.Invalidate("nihao")
	if removed != 3 {
		t.Errorf("expected 3 prefixes of 'nihao' dropped, got %d", removed)
	}
	for _, p := range []string{"n", "ni", "nih"} {
		if _, ok := hc.Get(p); ok {
			t.Errorf("prefix %q survived invalidation", p)
		}
	}
	for _, p := range []string{"h", "ha"} {
		if _, ok := hc.Get(p); !ok {
			t.Errorf("unrelated prefix %q was dropped", p)
		}
	}
}

func TestHotCacheEvictsLeastRecentlyUsed(t *testing.T) {
	hc := NewHotCache(2)
	hc.Put("a", nil)
	hc.Put("b", nil)
	hc.Get("a")
	hc.Put("c", nil)

	if _, ok := hc.Get("b"); ok {
		t.Error("least recently used prefix should have been evicted")
	}
	if _, ok := hc.Get("a"); !ok {
		t.Error("recently used prefix was evicted")
	}
	if hc.Len() != 2 {
		t.Errorf("Len() = %d, want 2", hc.Len())
	}
	// evicted prefixes must leave the patricia index too
	if n := hc.Invalidate("b"); n != 0 {
		t.Errorf("evicted prefix still indexed, invalidated %d", n)
	}
}
