package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/bastiangx/hanserve/pkg/engine"
)

func newHandler(limit int, noFilter bool) *InputHandler {
	e := engine.New()
	e.InsertDict("ni", "你", "you", 100)
	e.InsertDict("hao", "好", "good", 100)
	e.InsertDict("nihao", "你好", "hello", 500)
	e.InsertDict("nihaoma", "你好吗", "how are you", 300)
	return NewInputHandler(e, 1, 32, limit, noFilter)
}

func runLines(t *testing.T, h *InputHandler, lines ...string) string {
	t.Helper()
	var out bytes.Buffer
	if err := h.Run(strings.NewReader(strings.Join(lines, "\n")+"\n"), &out); err != nil {
		t.Fatalf("Run: %v", err)
	}
	return out.String()
}

func TestSentenceFirstWithoutRepeats(t *testing.T) {
	out := runLines(t, newHandler(10, false), "nihao")

	if !strings.Contains(out, "ni'hao") {
		t.Errorf("syllable split missing:\n%s", out)
	}
	first := strings.Index(out, " 1. ")
	if first < 0 || !strings.Contains(out[first:], "你好") {
		t.Fatalf("no ranked output:\n%s", out)
	}
	// the sentence and the top prefix match are both 你好; it is listed once
	if strings.Count(out, "你好 ") != 1 {
		t.Errorf("duplicate text listed:\n%s", out)
	}
	if !strings.Contains(out, " 2. ") || !strings.Contains(out, "你好吗") {
		t.Errorf("prefix matches missing:\n%s", out)
	}
}

func TestLimit(t *testing.T) {
	out := runLines(t, newHandler(1, false), "ni")
	if strings.Contains(out, " 2. ") {
		t.Errorf("limit 1 printed more than one line:\n%s", out)
	}
}

func TestFilterAndLength(t *testing.T) {
	out := runLines(t, newHandler(10, false), "ni3")
	if !strings.Contains(out, "No results for 'ni3': tone numbers") {
		t.Errorf("filtered input was searched:\n%s", out)
	}
	out = runLines(t, newHandler(10, false), "n-i")
	if !strings.Contains(out, "No results for 'n-i'\n") {
		t.Errorf("non-pinyin input was searched:\n%s", out)
	}

	h := newHandler(10, true)
	h.maxPrefixLength = 2
	out = runLines(t, h, "nihao")
	if strings.Contains(out, " 1. ") {
		t.Errorf("over-long input was searched:\n%s", out)
	}
}

func TestCommands(t *testing.T) {
	out := runLines(t, newHandler(10, false), ":trace", ":ping", "nihaoma", ":trace", ":stats", ":bogus", ":q", "ni")

	for _, want := range []string{"nothing to trace yet", "Pong from Go!", "[0,3) nihaoma", "entries", "unknown command :bogus"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	// input after :q is never read
	if strings.Contains(out, "syllables: ni\n") {
		t.Errorf("loop continued after :q:\n%s", out)
	}
}
