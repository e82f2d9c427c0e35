package engine

import (
	"encoding/json"
	"fmt"
	"slices"
	"testing"

	"github.com/bastiangx/hanserve/pkg/compose"
	"github.com/bastiangx/hanserve/pkg/suggest"
)

func seeded(t *testing.T, opts ...Option) *Engine {
	t.Helper()
	e := New(opts...)
	e.InsertDict("ni", "你", "you", 100)
	e.InsertDict("hao", "好", "good", 100)
	e.InsertDict("nihao", "你好", "hello", 500)
	return e
}

func TestPing(t *testing.T) {
	if got := New().Ping(); got != "Pong from Go!" {
		t.Errorf("Ping() = %q", got)
	}
}

func TestSearch(t *testing.T) {
	e := seeded(t)

	got := e.Search("ni")
	if len(got) != 2 || got[0].Text != "你好" || got[1].Text != "你" {
		t.Errorf("Search(ni) = %v", got)
	}
	if got := e.Search("zz"); len(got) != 0 {
		t.Errorf("Search(zz) = %v, want empty", got)
	}
	if got := e.Search(""); len(got) != 3 {
		t.Errorf("empty prefix should match from the root, got %v", got)
	}
}

func TestSearchSentence(t *testing.T) {
	e := seeded(t)

	got := e.SearchSentence("nihao")
	want := []suggest.Candidate{{Text: "你好", Desc: compose.SentenceDesc, Priority: compose.SentencePriority}}
	if !slices.Equal(got, want) {
		t.Errorf("SearchSentence(nihao) = %v, want %v", got, want)
	}
	if got := e.SearchSentence("nihaoma"); len(got) != 0 {
		t.Errorf("uncovered syllable should yield nothing, got %v", got)
	}
	if got := e.SearchSentence(""); len(got) != 0 {
		t.Errorf("empty input should yield nothing, got %v", got)
	}
}

func TestInsertDictIdempotent(t *testing.T) {
	e := seeded(t)
	before := e.Search("ni")
	e.InsertDict("ni", "你", "you", 100)
	after := e.Search("ni")
	if !slices.Equal(before, after) {
		t.Errorf("repeated insert changed results: %v -> %v", before, after)
	}
	if e.Stats()["duplicates"] != 1 {
		t.Errorf("expected one rejected insert, stats %v", e.Stats())
	}
}

func TestCacheCoherence(t *testing.T) {
	plain := New()
	cached := New(WithCache(16))

	steps := []struct {
		key, text string
		priority  int
	}{
		{"ni", "你", 100},
		{"nihao", "你好", 500},
		{"nin", "您", 300},
		{"hao", "好", 100},
		{"ni", "泥", 900},
		{"nihaoma", "你好吗", 50},
	}
	prefixes := []string{"n", "ni", "nih", "nihao", "h", "hao", "x"}

	for _, s := range steps {
		plain.InsertDict(s.key, s.text, "", s.priority)
		cached.InsertDict(s.key, s.text, "", s.priority)
		for _, p := range prefixes {
			want := plain.Search(p)
			// query twice so the second read is served from the cache
			cached.Search(p)
			if got := cached.Search(p); !slices.Equal(got, want) {
				t.Fatalf("after inserting %q, Search(%q) = %v, want %v", s.key, p, got, want)
			}
		}
	}

	if cached.Stats()["hotCacheHits"] == 0 {
		t.Error("cache was never hit")
	}
}

func TestCacheCoherenceInvalidUTF8(t *testing.T) {
	tests := []struct {
		name, prefix, key string
	}{
		{"invalid prefix, replacement key", "\xff", "\uFFFD"},
		{"replacement prefix, invalid key", "\uFFFD", "\xffa"},
		{"one replacement per byte", "\xff\xfe", "\uFFFD\uFFFDb"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(WithCache(8))
			if got := e.Search(tt.prefix); len(got) != 0 {
				t.Fatalf("Search(%q) on empty engine = %v", tt.prefix, got)
			}
			e.InsertDict(tt.key, "x", "", 1)

			fresh := New()
			fresh.InsertDict(tt.key, "x", "", 1)
			want := fresh.Search(tt.prefix)
			if len(want) != 1 {
				t.Fatalf("uncached Search(%q) = %v, want one candidate", tt.prefix, want)
			}
			if got := e.Search(tt.prefix); !slices.Equal(got, want) {
				t.Errorf("cached Search(%q) = %v, want %v", tt.prefix, got, want)
			}
		})
	}
}

func TestEncodeJSON(t *testing.T) {
	if got := EncodeJSON(nil); got != "[]" {
		t.Errorf("EncodeJSON(nil) = %q", got)
	}

	e := seeded(t)
	raw := e.SearchJSON("hao")
	var decoded []map[string]any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("SearchJSON produced invalid JSON %q: %v", raw, err)
	}
	if len(decoded) != 1 || decoded[0]["text"] != "好" || decoded[0]["desc"] != "good" {
		t.Errorf("unexpected payload %s", raw)
	}
	if p, ok := decoded[0]["priority"].(float64); !ok || p != 100 {
		t.Errorf("priority = %v", decoded[0]["priority"])
	}

	if got := e.SearchSentenceJSON("qqq"); got != "[]" {
		t.Errorf("SearchSentenceJSON(qqq) = %q", got)
	}
	if got := e.SearchJSON("<"); got != "[]" {
		t.Errorf("SearchJSON(<) = %q", got)
	}
}

func TestEncodeJSONKeepsMarkup(t *testing.T) {
	got := EncodeJSON([]suggest.Candidate{{Text: "<&>", Priority: 1}})
	want := `[{"text":"<&>","desc":"","priority":1}]`
	if got != want {
		t.Errorf("EncodeJSON = %s, want %s", got, want)
	}
}

func TestSearchCap(t *testing.T) {
	e := New(WithCache(4))
	for i := 0; i < 150; i++ {
		e.InsertDict(fmt.Sprintf("a%d", i), fmt.Sprintf("t%d", i), "", i)
	}
	if got := e.Search("a"); len(got) != suggest.MaxResults {
		t.Errorf("Search(a) returned %d results", len(got))
	}
}
