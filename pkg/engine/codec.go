package engine

import (
	"bytes"
	"encoding/json"

	"github.com/charmbracelet/log"

	"github.com/bastiangx/hanserve/pkg/suggest"
)

// emptyJSON is returned whenever a result list cannot be encoded.
const emptyJSON = "[]"

// SearchJSON is Search encoded as a JSON array.
func (e *Engine) SearchJSON(prefix string) string {
	return EncodeJSON(e.Search(prefix))
}

// SearchSentenceJSON is SearchSentence encoded as a JSON array.
func (e *Engine) SearchSentenceJSON(input string) string {
	return EncodeJSON(e.SearchSentence(input))
}

// EncodeJSON renders candidates as an array of {"text","desc","priority"}
// objects. Nil input and encoding failures both yield "[]".
func EncodeJSON(cands []suggest.Candidate) string {
	if len(cands) == 0 {
		return emptyJSON
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(cands); err != nil {
		log.Warnf("Failed to encode %d candidates: %v", len(cands), err)
		return emptyJSON
	}
	return string(bytes.TrimRight(buf.Bytes(), "\n"))
}
