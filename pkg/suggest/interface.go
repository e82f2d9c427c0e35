// Package suggest is the core, providing the character trie that stores ranked
// candidates and the traversals used for prefix and exact lookups.
package suggest

// Index defines the lookups a candidate index serves to the rest of the engine.
type Index interface {
	// Insert adds a candidate under key. It returns false when an entry with
	// the same text and description already exists there.
	Insert(key, value, desc string, priority int) bool

	// Search returns candidates stored at or below prefix, highest priority first
	Search(prefix string) []Candidate

	// ExactMatch returns the candidates anchored at key itself
	ExactMatch(key string) []Candidate

	// Len returns the number of stored candidates
	Len() int
}

var _ Index = (*Trie)(nil)
