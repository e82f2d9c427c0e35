package utils

// SeenFilter drops repeated candidate texts when several result lists are
// shown together.
type SeenFilter struct {
	seen map[string]bool
}

// NewSeenFilter returns a filter that already excludes the given texts.
func NewSeenFilter(exclude ...string) *SeenFilter {
	seen := make(map[string]bool, len(exclude))
	for _, s := range exclude {
		seen[s] = true
	}
	return &SeenFilter{seen: seen}
}

// ShouldInclude returns true the first time text is offered.
func (f *SeenFilter) ShouldInclude(text string) bool {
	if f.seen[text] {
		return false
	}
	f.seen[text] = true
	return true
}
