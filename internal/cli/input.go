// Package cli is an interactive prompt over the engine, for debugging
// dictionaries and trying composition by hand.
package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/bastiangx/hanserve/internal/utils"
	"github.com/bastiangx/hanserve/pkg/compose"
	"github.com/bastiangx/hanserve/pkg/engine"
	"github.com/bastiangx/hanserve/pkg/pinyin"
	"github.com/bastiangx/hanserve/pkg/suggest"
)

var (
	textStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	descStyle = lipgloss.NewStyle().Faint(true)
	headStyle = lipgloss.NewStyle().Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// InputHandler reads one input per line and prints the sentence candidate
// followed by prefix matches. Lines starting with ':' are commands:
//
//	:ping    engine liveness
//	:stats   index and cache counters
//	:trace   show how the last sentence was composed
//	:q       quit
type InputHandler struct {
	engine          *engine.Engine
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	noFilter        bool

	requestCount int
	last         string
}

// NewInputHandler creates a handler. Length limits count characters.
func NewInputHandler(eng *engine.Engine, minLength, maxLength, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		engine:          eng,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		noFilter:        noFilter,
	}
}

// Run loops until in is exhausted or :q is read.
func (h *InputHandler) Run(in io.Reader, out io.Writer) error {
	fmt.Fprintln(out, headStyle.Render("hanserve CLI"))
	fmt.Fprintln(out, "type pinyin and press Enter (:q to exit)")

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if !h.command(line, out) {
				return nil
			}
			continue
		}
		h.handleInput(line, out)
	}
}

// command runs a ':' command and reports whether the loop should go on.
func (h *InputHandler) command(line string, out io.Writer) bool {
	switch line {
	case ":q", ":quit":
		return false
	case ":ping":
		fmt.Fprintln(out, h.engine.Ping())
	case ":stats":
		stats := h.engine.Stats()
		for _, key := range []string{"entries", "nodes", "inserts", "duplicates", "hotCacheEntries", "hotCacheHits", "hotCacheMisses"} {
			if v, ok := stats[key]; ok {
				fmt.Fprintf(out, "%-16s %s\n", key, utils.FormatWithCommas(v))
			}
		}
	case ":trace":
		if h.last == "" {
			fmt.Fprintln(out, warnStyle.Render("nothing to trace yet"))
			return true
		}
		printTrace(out, h.engine.Trace(h.last))
	default:
		fmt.Fprintln(out, warnStyle.Render("unknown command "+line))
	}
	return true
}

func (h *InputHandler) handleInput(input string, out io.Writer) {
	h.requestCount++

	n := utf8.RuneCountInString(input)
	if n < h.minPrefixLength {
		log.Errorf("Input too short: %s", input)
		return
	}
	if n > h.maxPrefixLength {
		log.Errorf("Input too long: %s", input)
		return
	}
	if !h.noFilter && !utils.IsValidInput(input) {
		if utils.ContainsNumbers(input) {
			fmt.Fprintf(out, "No results for '%s': tone numbers are not supported\n", input)
			return
		}
		fmt.Fprintf(out, "No results for '%s'\n", input)
		return
	}
	h.last = input

	start := time.Now()
	sentence := h.engine.SearchSentence(input)
	matches := h.engine.Search(input)
	elapsed := time.Since(start)
	log.Debugf("Took [ %s ] for '%s'", utils.FormatMicros(elapsed), input)

	fmt.Fprintf(out, "%s %s\n", descStyle.Render("syllables:"), strings.Join(pinyin.Split(input), "'"))

	if len(sentence) == 0 && len(matches) == 0 {
		fmt.Fprintln(out, warnStyle.Render("no candidates for '"+input+"'"))
		return
	}

	seen := utils.NewSeenFilter()
	rank := 0
	for _, group := range [][]suggest.Candidate{sentence, matches} {
		for _, c := range group {
			if rank >= h.suggestLimit || !seen.ShouldInclude(c.Text) {
				continue
			}
			rank++
			fmt.Fprintf(out, "%2d. %s  %s (%s)\n",
				rank, textStyle.Render(c.Text), descStyle.Render(c.Desc), utils.FormatWithCommas(c.Priority))
		}
	}
}

func printTrace(out io.Writer, spans []compose.Span) {
	if len(spans) == 0 {
		fmt.Fprintln(out, warnStyle.Render("no composition"))
		return
	}
	for _, sp := range spans {
		fmt.Fprintf(out, "[%d,%d) %-12s -> %s (%s)\n",
			sp.Start, sp.End, sp.Key, textStyle.Render(sp.Choice.Text), utils.FormatWithCommas(sp.Choice.Priority))
	}
}
