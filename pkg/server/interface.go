/*
Package server implements the msgpack IPC front of hanserve.

Clients write msgpack maps to stdin and read one msgpack map per request
from stdout. Every request carries an id that is echoed back, and an op
naming what to do; a request without op is a prefix search.

# IPC

Prefix search, at most l candidates (capped by max_limit):

	{"id": "r1", "op": "search", "q": "ni", "l": 5}
	{"id": "r1", "s": [{"t": "你好", "d": "hello", "p": 500}, {"t": "你", "d": "you", "p": 100}], "c": 2, "t": 38}

Sentence composition returns zero or one candidate:

	{"id": "r2", "op": "sentence", "q": "nihao"}
	{"id": "r2", "s": [{"t": "你好", "d": "✨ 智能整句", "p": 999999}], "c": 1, "t": 51}

Adding an entry at runtime:

	{"id": "r3", "op": "insert", "k": "nihao", "v": "你好", "d": "hello", "p": 500}
	{"id": "r3", "status": "ok"}

Dictionary management switches catalog sources and rebuilds the index:

	{"id": "r4", "op": "dicts"}
	{"id": "r5", "op": "dict", "name": "生僻字", "on": true}
	{"id": "r6", "op": "dict", "tag": "japanese", "on": false}

Failures answer with an error map and the server keeps reading:

	{"id": "r7", "e": "unknown op: frobnicate", "c": 400}

Timings in "t" are microseconds spent inside the server.
*/
package server

import "github.com/bastiangx/hanserve/pkg/suggest"

// Ops understood by the server.
const (
	OpSearch   = "search"
	OpSentence = "sentence"
	OpInsert   = "insert"
	OpPing     = "ping"
	OpStats    = "stats"
	OpConfig   = "config"
	OpDicts    = "dicts"
	OpDict     = "dict"
)

// Request is the union of every request shape; each op reads its own fields.
type Request struct {
	ID string `msgpack:"id"`
	Op string `msgpack:"op,omitempty"`

	// search, sentence
	Query string `msgpack:"q,omitempty"`
	Limit int    `msgpack:"l,omitempty"`

	// insert
	Key      string `msgpack:"k,omitempty"`
	Value    string `msgpack:"v,omitempty"`
	Desc     string `msgpack:"d,omitempty"`
	Priority int    `msgpack:"p,omitempty"`

	// config
	MaxLimit     *int  `msgpack:"max_limit,omitempty"`
	MinPrefix    *int  `msgpack:"min_prefix,omitempty"`
	MaxPrefix    *int  `msgpack:"max_prefix,omitempty"`
	EnableFilter *bool `msgpack:"enable_filter,omitempty"`

	// dict
	Name    string `msgpack:"name,omitempty"`
	Tag     string `msgpack:"tag,omitempty"`
	Enabled *bool  `msgpack:"on,omitempty"`
}

// CandidateResponse answers search and sentence.
type CandidateResponse struct {
	ID          string              `msgpack:"id"`
	Suggestions []suggest.Candidate `msgpack:"s"`
	Count       int                 `msgpack:"c"`
	TimeTaken   int64               `msgpack:"t"`
}

// StatusResponse answers ops that do not return candidates.
type StatusResponse struct {
	ID      string         `msgpack:"id"`
	Status  string         `msgpack:"status"`
	Message string         `msgpack:"m,omitempty"`
	Stats   map[string]int `msgpack:"stats,omitempty"`
}

// DictInfo describes one catalog source.
type DictInfo struct {
	Name     string `msgpack:"name"`
	Path     string `msgpack:"path"`
	Enabled  bool   `msgpack:"on"`
	Priority int    `msgpack:"p"`
	Tag      string `msgpack:"tag,omitempty"`
}

// DictResponse answers dicts and dict.
type DictResponse struct {
	ID     string         `msgpack:"id"`
	Status string         `msgpack:"status"`
	Dicts  []DictInfo     `msgpack:"dicts"`
	Stats  map[string]int `msgpack:"stats,omitempty"`
}

// ErrorResponse holds basic error information for a failed request
type ErrorResponse struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}

// Error codes.
const (
	CodeBadRequest  = 400
	CodeUnavailable = 503
	CodeInternal    = 500
)
