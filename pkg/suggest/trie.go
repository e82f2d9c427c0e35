package suggest

import (
	"maps"
	"slices"
)

const (
	// MaxResults caps the number of candidates a prefix search returns.
	MaxResults = 100
	// MaxCollectDepth is how many levels below the matched node a prefix
	// search descends.
	MaxCollectDepth = 10
)

// node owns its children exclusively; no node is reachable from two parents.
type node struct {
	children map[rune]*node
	values   []Candidate
}

// Trie is a rune keyed prefix index. Each node keeps the candidates anchored
// at its exact key, sorted by priority on every insert.
//
// A Trie is not safe for concurrent use.
type Trie struct {
	root    *node
	nodes   int
	entries int
}

// NewTrie returns an empty trie.
func NewTrie() *Trie {
	return &Trie{root: &node{}, nodes: 1}
}

// Insert walks key, creating missing nodes, and appends the candidate at the
// terminal node unless an entry with the same text and desc is already there.
// The node's list is re-sorted after every append so ExactMatch can hand it
// out as is.
func (t *Trie) Insert(key, value, desc string, priority int) bool {
	n := t.root
	for _, r := range key {
		child, ok := n.children[r]
		if !ok {
			if n.children == nil {
				n.children = make(map[rune]*node)
			}
			child = &node{}
			n.children[r] = child
			t.nodes++
		}
		n = child
	}

	cand := Candidate{Text: value, Desc: desc, Priority: priority}
	for _, existing := range n.values {
		if existing.SameEntry(cand) {
			return false
		}
	}
	n.values = append(n.values, cand)
	sortByPriority(n.values)
	t.entries++
	return true
}

// Search collects the candidates of the node matching prefix and of its
// descendants up to MaxCollectDepth levels down, sorted by priority and
// capped at MaxResults. An unknown prefix yields nil.
func (t *Trie) Search(prefix string) []Candidate {
	n := t.walk(prefix)
	if n == nil {
		return nil
	}

	var results []Candidate
	collect(n, 0, &results)
	sortByPriority(results)
	if len(results) > MaxResults {
		results = results[:MaxResults]
	}
	return results
}

// ExactMatch returns a copy of the candidates anchored at key. The whole key
// must resolve; there is no descent below the node.
func (t *Trie) ExactMatch(key string) []Candidate {
	n := t.walk(key)
	if n == nil || len(n.values) == 0 {
		return nil
	}
	return slices.Clone(n.values)
}

// Len returns the number of stored candidates.
func (t *Trie) Len() int {
	return t.entries
}

// Nodes returns the number of nodes, root included.
func (t *Trie) Nodes() int {
	return t.nodes
}

func (t *Trie) walk(key string) *node {
	n := t.root
	for _, r := range key {
		child, ok := n.children[r]
		if !ok {
			return nil
		}
		n = child
	}
	return n
}

// collect visits children in rune order so ties between nodes always merge
// the same way.
func collect(n *node, depth int, results *[]Candidate) {
	if depth > MaxCollectDepth {
		return
	}
	*results = append(*results, n.values...)
	for _, r := range slices.Sorted(maps.Keys(n.children)) {
		collect(n.children[r], depth+1, results)
	}
}
