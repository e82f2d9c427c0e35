package suggest

import (
	"math"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/tchap/go-patricia/v2/patricia"
)

// HotCache keeps recent prefix search results. Cached prefixes are also held
// in a patricia trie so an insert can drop exactly the prefixes whose result
// it may change: those that are prefixes of the inserted key.
//
// HotCache is owned by a single engine and is not safe for concurrent use.
type HotCache struct {
	results     map[string][]Candidate
	hotTrie     *patricia.Trie
	accessTime  map[string]int64
	accessCount int64
	maxEntries  int
	hits        int
	misses      int
}

// NewHotCache creates a cache holding at most maxEntries prefixes.
func NewHotCache(maxEntries int) *HotCache {
	if maxEntries < 1 {
		maxEntries = 1
	}
	return &HotCache{
		results:    make(map[string][]Candidate, maxEntries),
		hotTrie:    patricia.NewTrie(),
		accessTime: make(map[string]int64, maxEntries),
		maxEntries: maxEntries,
	}
}

// Get returns a copy of the cached result for prefix.
func (hc *HotCache) Get(prefix string) ([]Candidate, bool) {
	cached, ok := hc.results[prefix]
	if !ok {
		hc.misses++
		return nil, false
	}
	hc.hits++
	hc.markAccessed(prefix)
	return slices.Clone(cached), true
}

// Put stores a copy of results under prefix, evicting the least recently
// used prefix when the cache is full.
func (hc *HotCache) Put(prefix string, results []Candidate) {
	if _, exists := hc.results[prefix]; !exists && len(hc.results) >= hc.maxEntries {
		hc.evictLRU()
	}
	hc.results[prefix] = slices.Clone(results)
	hc.hotTrie.Set(patricia.Prefix(prefix), true)
	hc.markAccessed(prefix)
}

// Invalidate drops every cached prefix of key and returns how many were
// removed.
func (hc *HotCache) Invalidate(key string) int {
	var stale []string
	err := hc.hotTrie.VisitPrefixes(patricia.Prefix(key), func(p patricia.Prefix, _ patricia.Item) error {
		stale = append(stale, string(p))
		return nil
	})
	if err != nil {
		log.Errorf("Error visiting hot cache prefixes of %q: %v", key, err)
	}
	for _, prefix := range stale {
		hc.remove(prefix)
	}
	return len(stale)
}

// Len returns the number of cached prefixes.
func (hc *HotCache) Len() int {
	return len(hc.results)
}

func (hc *HotCache) Stats() map[string]int {
	return map[string]int{
		"hotCacheEntries": len(hc.results),
		"maxHotEntries":   hc.maxEntries,
		"hotCacheHits":    hc.hits,
		"hotCacheMisses":  hc.misses,
	}
}

func (hc *HotCache) markAccessed(prefix string) {
	hc.accessCount++
	hc.accessTime[prefix] = hc.accessCount
}

func (hc *HotCache) remove(prefix string) {
	delete(hc.results, prefix)
	delete(hc.accessTime, prefix)
	hc.hotTrie.Delete(patricia.Prefix(prefix))
}

func (hc *HotCache) evictLRU() {
	var oldest string
	oldestTime := int64(math.MaxInt64)

	for prefix, accessTime := range hc.accessTime {
		if accessTime < oldestTime {
			oldestTime = accessTime
			oldest = prefix
		}
	}

	if oldestTime != math.MaxInt64 {
		hc.remove(oldest)
		log.Debugf("Evicted prefix '%s' from hot cache", oldest)
	}
}
