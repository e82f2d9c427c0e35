package suggest

import "sort"

// Candidate is a ranked dictionary entry: the text shown to the user, an
// optional description (usually an English gloss) and its static priority.
type Candidate struct {
	Text     string `json:"text" msgpack:"t"`
	Desc     string `json:"desc" msgpack:"d"`
	Priority int    `json:"priority" msgpack:"p"`
}

// SameEntry reports whether c and o describe the same dictionary entry.
// Priority is not part of an entry's identity.
func (c Candidate) SameEntry(o Candidate) bool {
	return c.Text == o.Text && c.Desc == o.Desc
}

// sortByPriority orders candidates highest priority first, keeping the
// relative order of equal priorities.
func sortByPriority(cands []Candidate) {
	sort.SliceStable(cands, func(i, j int) bool {
		return cands[i].Priority > cands[j].Priority
	})
}
