// Package compose rebuilds a whole sentence from a run of concatenated pinyin.
//
// The input is split into syllables, then a left-to-right dynamic programme
// over syllable boundaries picks, for every window of up to MaxWindow
// syllables, the best exact dictionary match and keeps the highest scoring
// way to reach each boundary. Only the top path is kept; there is no n-best
// list and no language model.
package compose

import (
	"strings"
	"unicode/utf8"

	"github.com/bastiangx/hanserve/pkg/pinyin"
	"github.com/bastiangx/hanserve/pkg/suggest"
)

const (
	// MaxWindow is the largest number of syllables looked up as one key.
	MaxWindow = 4
	// LengthBonus is added per character of a chosen candidate so longer
	// words beat strings of short ones.
	LengthBonus = 2000
	// SentencePriority is the priority reported on a composed sentence.
	SentencePriority = 999999
	// SentenceDesc marks a composed sentence in candidate lists.
	SentenceDesc = "✨ 智能整句"
)

// ExactMatcher resolves a full key to the candidates stored at it, best first.
type ExactMatcher interface {
	ExactMatch(key string) []suggest.Candidate
}

// Span is one step of the winning path: syllables [Start, End) were looked up
// as Key and resolved to Choice.
type Span struct {
	Start  int               `json:"start"`
	End    int               `json:"end"`
	Key    string            `json:"key"`
	Choice suggest.Candidate `json:"choice"`
}

type slot struct {
	reached bool
	score   float64
	text    string
	prev    int
	span    Span
}

// Composer runs sentence composition against an index.
type Composer struct {
	Index ExactMatcher
}

// New returns a Composer reading from idx.
func New(idx ExactMatcher) *Composer {
	return &Composer{Index: idx}
}

// Compose returns the best full rendering of input as a single candidate, or
// nil when input is empty or some syllable cannot be covered by any window.
func (c *Composer) Compose(input string) []suggest.Candidate {
	slots, n := c.run(input)
	if slots == nil || !slots[n].reached {
		return nil
	}
	return []suggest.Candidate{{
		Text:     slots[n].text,
		Desc:     SentenceDesc,
		Priority: SentencePriority,
	}}
}

// Trace returns the spans of the winning path in input order, or nil when
// Compose would return nothing.
func (c *Composer) Trace(input string) []Span {
	slots, n := c.run(input)
	if slots == nil || !slots[n].reached {
		return nil
	}

	var spans []Span
	for i := n; i > 0; i = slots[i].prev {
		spans = append(spans, slots[i].span)
	}
	for l, r := 0, len(spans)-1; l < r; l, r = l+1, r-1 {
		spans[l], spans[r] = spans[r], spans[l]
	}
	return spans
}

func (c *Composer) run(input string) ([]slot, int) {
	if input == "" || c.Index == nil {
		return nil, 0
	}

	syllables := pinyin.Split(input)
	n := len(syllables)
	slots := make([]slot, n+1)
	slots[0].reached = true

	for i := 0; i < n; i++ {
		if !slots[i].reached {
			continue
		}
		for size := 1; size <= MaxWindow && i+size <= n; size++ {
			key := strings.Join(syllables[i:i+size], "")
			matches := c.Index.ExactMatch(key)
			if len(matches) == 0 {
				continue
			}
			top := matches[0]
			score := slots[i].score + float64(top.Priority) +
				LengthBonus*float64(utf8.RuneCountInString(top.Text))

			next := &slots[i+size]
			// strict: on a tie the path found first is kept
			if !next.reached || score > next.score {
				*next = slot{
					reached: true,
					score:   score,
					text:    slots[i].text + top.Text,
					prev:    i,
					span:    Span{Start: i, End: i + size, Key: key, Choice: top},
				}
			}
		}
	}
	return slots, n
}
