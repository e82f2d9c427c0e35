package dictionary

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Entry is one key/text pair read from a dictionary file. The msgpack tags
// define the packed dictionary format.
type Entry struct {
	Key  string `msgpack:"k"`
	Text string `msgpack:"t"`
	Desc string `msgpack:"d,omitempty"`
}

// NormalizeKey folds compatibility forms (full-width Latin and digits) and
// lowercases key. Punctuation keys are returned untouched.
func NormalizeKey(key string, punctuation bool) string {
	if punctuation {
		return key
	}
	return strings.ToLower(norm.NFKC.String(key))
}
