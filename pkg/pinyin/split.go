package pinyin

import (
	"unicode/utf8"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Split cuts input into syllables by forward maximal munch: at each position
// the longest inventory syllable (up to MaxSyllableLen runes) starting there
// wins. A position where nothing matches yields its single rune as a segment,
// so the segments always concatenate back to input.
//
// The cut is greedy and can be wrong: "xian" is one syllable, never xi+an.
func Split(input string) []string {
	if input == "" {
		return nil
	}

	trie := inventory()
	segments := make([]string, 0, len(input)/2+1)

	for pos := 0; pos < len(input); {
		window := runeWindow(input[pos:], MaxSyllableLen)

		best := 0
		_ = trie.VisitPrefixes(patricia.Prefix(window), func(p patricia.Prefix, _ patricia.Item) error {
			if len(p) > best {
				best = len(p)
			}
			return nil
		})

		if best == 0 {
			_, best = utf8.DecodeRuneInString(input[pos:])
		}
		segments = append(segments, input[pos:pos+best])
		pos += best
	}
	return segments
}

// runeWindow returns the leading n runes of s.
func runeWindow(s string, n int) string {
	end := 0
	for i := 0; i < n && end < len(s); i++ {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
	}
	return s[:end]
}
