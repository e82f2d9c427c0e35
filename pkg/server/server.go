package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/bastiangx/hanserve/internal/logger"
	"github.com/bastiangx/hanserve/internal/observe"
	"github.com/bastiangx/hanserve/internal/utils"
	"github.com/bastiangx/hanserve/pkg/config"
	"github.com/bastiangx/hanserve/pkg/dictionary"
	"github.com/bastiangx/hanserve/pkg/engine"
	"github.com/bastiangx/hanserve/pkg/suggest"
)

// maxDecodeFailures is how many unreadable messages in a row end the session.
const maxDecodeFailures = 16

// EngineFactory builds an empty engine for a dictionary reload.
type EngineFactory func() *engine.Engine

// Server answers msgpack requests against one engine.
type Server struct {
	mu         sync.Mutex
	engine     *engine.Engine
	config     *config.Config
	configPath string

	catalog   *dictionary.RuntimeCatalog
	newEngine EngineFactory

	metrics *observe.Metrics
	log     *log.Logger

	reader io.Reader
	writer io.Writer
	enc    *msgpack.Encoder

	requestCount int
}

// Option configures a Server.
type Option func(*Server)

// WithIO replaces stdin/stdout.
func WithIO(r io.Reader, w io.Writer) Option {
	return func(s *Server) {
		s.reader = r
		s.writer = w
	}
}

// WithMetrics records request metrics on m.
func WithMetrics(m *observe.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithCatalog enables the dicts and dict ops. newEngine builds the empty
// engine a reload fills.
func WithCatalog(catalog *dictionary.RuntimeCatalog, newEngine EngineFactory) Option {
	return func(s *Server) {
		s.catalog = catalog
		s.newEngine = newEngine
	}
}

// NewServer creates a server reading stdin and writing stdout. configPath
// is where config changes are saved; empty keeps them in memory.
func NewServer(eng *engine.Engine, cfg *config.Config, configPath string, opts ...Option) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	s := &Server{
		engine:     eng,
		config:     cfg,
		configPath: configPath,
		reader:     os.Stdin,
		writer:     os.Stdout,
		log:        logger.New("server"),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.metrics == nil {
		s.metrics = observe.DefaultMetrics()
	}
	s.enc = msgpack.NewEncoder(s.writer)
	return s
}

// Start writes a ready status, then serves requests until the input ends or
// ctx is cancelled. End of input is a clean shutdown.
func (s *Server) Start(ctx context.Context) error {
	s.log.Debug("Starting server")
	s.send(map[string]string{"status": "ready"})

	dec := msgpack.NewDecoder(bufio.NewReader(s.reader))
	failures := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		raw, err := dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				s.log.Debug("Input closed, stopping server")
				return nil
			}
			failures++
			s.log.Errorf("Decoding request: %v", err)
			s.sendError("", "invalid msgpack request", CodeBadRequest)
			if failures >= maxDecodeFailures {
				return fmt.Errorf("giving up after %d unreadable requests: %w", failures, err)
			}
			continue
		}
		failures = 0

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.log.Errorf("Unmarshaling request: %v", err)
			s.sendError(peekID(raw), "malformed request: "+err.Error(), CodeBadRequest)
			continue
		}
		s.HandleRequest(ctx, req)
	}
}

// peekID recovers the id of a request that did not fit Request.
func peekID(raw msgpack.RawMessage) string {
	var fields map[string]any
	if msgpack.Unmarshal(raw, &fields) != nil {
		return ""
	}
	id, _ := fields["id"].(string)
	return id
}

// HandleRequest dispatches one decoded request and writes its response.
func (s *Server) HandleRequest(ctx context.Context, req Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.requestCount++
	op := req.Op
	if op == "" {
		op = OpSearch
	}

	start := time.Now()
	status := observe.StatusOK
	var err *requestError

	switch op {
	case OpSearch:
		err = s.handleSearch(ctx, req, start)
	case OpSentence:
		err = s.handleSentence(ctx, req, start)
	case OpInsert:
		err = s.handleInsert(req)
	case OpPing:
		s.send(StatusResponse{ID: req.ID, Status: "ok", Message: s.engine.Ping()})
	case OpStats:
		stats := s.engine.Stats()
		stats["requests"] = s.requestCount
		s.send(StatusResponse{ID: req.ID, Status: "ok", Stats: stats})
	case OpConfig:
		err = s.handleConfig(req)
	case OpDicts:
		err = s.handleDicts(req)
	case OpDict:
		err = s.handleDictToggle(ctx, req)
	default:
		err = &requestError{fmt.Sprintf("unknown op: %s", req.Op), CodeBadRequest}
		op = "unknown"
	}

	if err != nil {
		status = observe.StatusError
		s.sendError(req.ID, err.msg, err.code)
		s.log.Debugf("Request %s (%s) failed: %s", req.ID, op, err.msg)
	}
	s.metrics.RecordRequest(ctx, op, status, time.Since(start))
}

type requestError struct {
	msg  string
	code int
}

func badRequest(format string, args ...any) *requestError {
	return &requestError{fmt.Sprintf(format, args...), CodeBadRequest}
}

func (s *Server) handleSearch(ctx context.Context, req Request, start time.Time) *requestError {
	q := req.Query
	n := utf8.RuneCountInString(q)
	if n < s.config.Server.MinPrefix {
		return badRequest("prefix must be at least %d characters", s.config.Server.MinPrefix)
	}
	if n > s.config.Server.MaxPrefix {
		return badRequest("prefix exceeds maximum length of %d characters", s.config.Server.MaxPrefix)
	}

	var results []suggest.Candidate
	if s.config.Server.EnableFilter && !utils.IsValidInput(q) {
		s.log.Debugf("Filtered out prefix '%s'", q)
	} else {
		results = s.engine.Search(q)
	}

	limit := req.Limit
	if limit < 1 || limit > s.config.Server.MaxLimit {
		limit = s.config.Server.MaxLimit
	}
	if len(results) > limit {
		results = results[:limit]
	}

	s.metrics.RecordResults(ctx, OpSearch, len(results))
	s.sendCandidates(req.ID, results, start)
	return nil
}

func (s *Server) handleSentence(ctx context.Context, req Request, start time.Time) *requestError {
	if utf8.RuneCountInString(req.Query) > s.config.Server.MaxPrefix {
		return badRequest("input exceeds maximum length of %d characters", s.config.Server.MaxPrefix)
	}
	results := s.engine.SearchSentence(req.Query)
	s.metrics.RecordResults(ctx, OpSentence, len(results))
	s.sendCandidates(req.ID, results, start)
	return nil
}

func (s *Server) handleInsert(req Request) *requestError {
	if req.Key == "" || req.Value == "" {
		return badRequest("insert needs both k and v")
	}
	status := "ok"
	if !s.engine.Add(req.Key, req.Value, req.Desc, req.Priority) {
		status = "duplicate"
	}
	s.send(StatusResponse{ID: req.ID, Status: status})
	return nil
}

func (s *Server) handleConfig(req Request) *requestError {
	err := s.config.Update(s.configPath, req.MaxLimit, req.MinPrefix, req.MaxPrefix, req.EnableFilter)
	if err != nil {
		s.log.Errorf("Saving config: %v", err)
		return &requestError{"failed to save config: " + err.Error(), CodeInternal}
	}
	s.send(StatusResponse{ID: req.ID, Status: "ok", Stats: map[string]int{
		"max_limit":  s.config.Server.MaxLimit,
		"min_prefix": s.config.Server.MinPrefix,
		"max_prefix": s.config.Server.MaxPrefix,
	}})
	return nil
}

func (s *Server) handleDicts(req Request) *requestError {
	if s.catalog == nil {
		return &requestError{"dictionary management is disabled", CodeUnavailable}
	}
	s.send(DictResponse{ID: req.ID, Status: "ok", Dicts: dictInfos(s.catalog.Sources())})
	return nil
}

// handleDictToggle switches a source (by name) or a group (by tag), then
// rebuilds the index from the new selection. If the rebuild fails the old
// engine keeps serving and the selection is put back.
func (s *Server) handleDictToggle(ctx context.Context, req Request) *requestError {
	if s.catalog == nil || s.newEngine == nil {
		return &requestError{"dictionary management is disabled", CodeUnavailable}
	}
	if req.Enabled == nil {
		return badRequest("dict needs on")
	}

	snapshot := s.catalog.Sources()
	switch {
	case req.Name != "":
		if err := s.catalog.SetEnabled(req.Name, *req.Enabled); err != nil {
			return badRequest("%v", err)
		}
	case req.Tag != "":
		if s.catalog.SetTagEnabled(req.Tag, *req.Enabled) == 0 {
			return badRequest("no dictionary tagged %q", req.Tag)
		}
	default:
		return badRequest("dict needs name or tag")
	}

	fresh := s.newEngine()
	stats, err := s.catalog.Reload(ctx, fresh)
	if err != nil && !errors.Is(err, dictionary.ErrNoSources) {
		s.log.Errorf("Reloading dictionaries: %v", err)
		s.catalog.Restore(snapshot)
		return &requestError{"reload failed: " + err.Error(), CodeInternal}
	}
	s.engine = fresh
	for _, src := range stats.PerSource {
		s.metrics.RecordDictionary(ctx, src.Name, src.Entries, src.Inserted)
	}
	s.log.Infof("Reloaded %d dictionaries, %s entries", stats.Loaded, utils.FormatWithCommas(stats.Inserted))

	s.send(DictResponse{
		ID:     req.ID,
		Status: "ok",
		Dicts:  dictInfos(s.catalog.Sources()),
		Stats: map[string]int{
			"loaded":   stats.Loaded,
			"failed":   stats.Failed,
			"inserted": stats.Inserted,
		},
	})
	return nil
}

func dictInfos(sources []dictionary.Source) []DictInfo {
	infos := make([]DictInfo, len(sources))
	for i, src := range sources {
		infos[i] = DictInfo{
			Name:     src.Name,
			Path:     src.Path,
			Enabled:  src.Enabled,
			Priority: src.Priority,
			Tag:      src.Tag,
		}
	}
	return infos
}

// Engine returns the engine currently serving requests.
func (s *Server) Engine() *engine.Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine
}

func (s *Server) sendCandidates(id string, results []suggest.Candidate, start time.Time) {
	if results == nil {
		results = []suggest.Candidate{}
	}
	s.send(CandidateResponse{
		ID:          id,
		Suggestions: results,
		Count:       len(results),
		TimeTaken:   time.Since(start).Microseconds(),
	})
}

func (s *Server) send(response any) {
	if err := s.enc.Encode(response); err != nil {
		s.log.Errorf("Encoding response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(ErrorResponse{ID: id, Error: message, Code: code})
}
