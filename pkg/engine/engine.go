/*
Package engine is the facade front-ends talk to.

An Engine owns one prefix index, the sentence composer reading from it and
an optional hot cache of prefix results. Three calls make up the surface:

	e := engine.New(engine.WithCache(10000))
	e.InsertDict("nihao", "你好", "hello", 500)
	e.Search("ni")            // ranked candidates under "ni", at most 100
	e.SearchSentence("nihao") // zero or one composed sentence

Nothing here returns an error: a prefix that matches nothing, or an input the
composer cannot cover, simply yields an empty list. JSON forms of both
searches are available for callers that pass strings across a boundary.

An Engine is not synchronized. Callers sharing one across goroutines must
serialize access themselves, as pkg/server does.
*/
package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/hanserve/pkg/compose"
	"github.com/bastiangx/hanserve/pkg/suggest"
)

// PongMessage is the fixed reply of Ping.
const PongMessage = "Pong from Go!"

type Engine struct {
	index    *suggest.Trie
	composer *compose.Composer
	hotCache *suggest.HotCache
	inserts  int
	rejected int
}

// Option configures an Engine.
type Option func(*Engine)

// WithCache enables a hot cache of up to size prefix results. A size below
// one leaves the cache off.
func WithCache(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.hotCache = suggest.NewHotCache(size)
		}
	}
}

// New returns an empty engine.
func New(opts ...Option) *Engine {
	index := suggest.NewTrie()
	e := &Engine{
		index:    index,
		composer: compose.New(index),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// InsertDict adds one dictionary entry. Inserting an entry whose text and
// desc already sit under key has no effect.
func (e *Engine) InsertDict(key, value, desc string, priority int) {
	e.Add(key, value, desc, priority)
}

// Add is InsertDict reporting whether the entry was new.
func (e *Engine) Add(key, value, desc string, priority int) bool {
	if !e.index.Insert(key, value, desc, priority) {
		e.rejected++
		return false
	}
	e.inserts++
	if e.hotCache != nil {
		if n := e.hotCache.Invalidate(cacheKey(key)); n > 0 {
			log.Debugf("Dropped %d cached prefixes of '%s'", n, key)
		}
	}
	return true
}

// Search returns the candidates stored under prefix and up to ten levels
// below it, highest priority first, at most suggest.MaxResults of them.
func (e *Engine) Search(prefix string) []suggest.Candidate {
	if e.hotCache == nil || prefix == "" {
		return e.index.Search(prefix)
	}
	key := cacheKey(prefix)
	if cached, ok := e.hotCache.Get(key); ok {
		return cached
	}
	results := e.index.Search(prefix)
	e.hotCache.Put(key, results)
	return results
}

// cacheKey spells s the way the trie walks it: every invalid byte becomes
// its own U+FFFD, so strings reaching the same node share one cache key.
func cacheKey(s string) string {
	if utf8.ValidString(s) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for _, r := range s {
		b.WriteRune(r)
	}
	return b.String()
}

// SearchSentence composes the whole input into one sentence candidate.
func (e *Engine) SearchSentence(input string) []suggest.Candidate {
	return e.composer.Compose(input)
}

// Trace exposes the spans chosen for SearchSentence(input).
func (e *Engine) Trace(input string) []compose.Span {
	return e.composer.Trace(input)
}

// ExactMatch returns the candidates stored exactly at key.
func (e *Engine) ExactMatch(key string) []suggest.Candidate {
	return e.index.ExactMatch(key)
}

// Ping is a liveness check.
func (e *Engine) Ping() string {
	return PongMessage
}

func (e *Engine) Stats() map[string]int {
	stats := map[string]int{
		"entries":    e.index.Len(),
		"nodes":      e.index.Nodes(),
		"inserts":    e.inserts,
		"duplicates": e.rejected,
	}
	if e.hotCache != nil {
		for k, v := range e.hotCache.Stats() {
			stats[k] = v
		}
	}
	return stats
}
