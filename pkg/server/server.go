package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"sync/atomic"
	"time"

	"github.com/bastiangx/courseserve/internal/utils"
	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/bastiangx/courseserve/pkg/config"
	"github.com/bastiangx/courseserve/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
	"golang.org/x/time/rate"
)

// Server handles the msgpack IPC for course completions
type Server struct {
	completer suggest.ICompleter
	cfg       *config.Live
	limiter   *rate.Limiter
	reader    *bufio.Reader
	writer    *bufio.Writer
	dec       *msgpack.Decoder
	enc       *msgpack.Encoder
	requests  atomic.Uint64
}

// NewServer creates a server reading requests from r and writing responses to w.
func NewServer(completer suggest.ICompleter, cfg *config.Live, r io.Reader, w io.Writer) *Server {
	reader := bufio.NewReader(r)
	writer := bufio.NewWriter(w)
	c := cfg.Get()
	return &Server{
		completer: completer,
		cfg:       cfg,
		limiter:   rate.NewLimiter(rateLimit(c.Server.RateLimit), c.Server.RateBurst),
		reader:    reader,
		writer:    writer,
		dec:       msgpack.NewDecoder(reader),
		enc:       msgpack.NewEncoder(writer),
	}
}

// Requests returns how many messages have been handled.
func (s *Server) Requests() uint64 { return s.requests.Load() }

// Start signals readiness and serves requests until the input ends or ctx
// is canceled. A message that cannot be decoded ends the session, since the
// stream position is lost.
func (s *Server) Start(ctx context.Context) error {
	log.Debug("Starting IPC server.")
	s.send(StatusMessage{Status: "ready"})

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			log.Errorf("Reading request: %v", err)
			s.sendError("", "Invalid msgpack request", 400)
			return err
		}
		s.handleRequest(ctx, raw)
	}
}

func (s *Server) handleRequest(ctx context.Context, raw msgpack.RawMessage) {
	s.requests.Add(1)

	var env Envelope
	if err := msgpack.Unmarshal(raw, &env); err != nil {
		log.Errorf("Unmarshaling request envelope: %v", err)
		s.sendError("", "Request must be a map", 400)
		return
	}

	cfg := s.cfg.Get()
	s.syncLimiter(cfg)
	if !s.limiter.Allow() {
		log.Debugf("Rate limited request %s", env.ID)
		s.sendError(env.ID, "Rate limit exceeded", 429)
		return
	}

	switch env.Action {
	case ActionComplete:
		var req CompletionRequest
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.sendError(env.ID, fmt.Sprintf("Invalid completion request: %v", err), 400)
			return
		}
		s.handleComplete(ctx, cfg, req)
	case ActionGetConfig, ActionSetConfig, ActionReload:
		var req ConfigRequest
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.sendError(env.ID, fmt.Sprintf("Invalid config request: %v", err), 400)
			return
		}
		s.handleConfig(req)
	case ActionStats:
		s.send(StatsResponse{ID: env.ID, Graph: s.completer.Stats(), Requests: s.requests.Load()})
	case ActionHealth:
		s.send(StatusMessage{ID: env.ID, Status: "ok"})
	default:
		s.sendError(env.ID, fmt.Sprintf("Unknown action: %s", env.Action), 400)
	}
}

func (s *Server) handleComplete(ctx context.Context, cfg *config.Config, req CompletionRequest) {
	if utils.TooLong(req.Input, cfg.Server.MaxInput) {
		s.sendError(req.ID, fmt.Sprintf("Input exceeds maximum length of %d characters", cfg.Server.MaxInput), 400)
		return
	}

	start := time.Now()
	var (
		records []catalog.Record
		err     error
	)
	switch {
	case req.Fields != nil && !req.Fields.IsZero():
		limit := clampLimit(req.Limit, cfg.Server.DefaultLimit, cfg.Server.MaxLimit)
		records, err = s.completer.CompleteFields(ctx, *req.Fields, limit)
	case req.Input != "":
		limit := clampLimit(req.Limit, cfg.Search.RawLimit, cfg.Server.MaxLimit)
		records, err = s.completer.Complete(ctx, req.Input, limit)
	default:
		err = &catalog.InvalidQueryError{Reason: "request has neither input nor fields"}
	}
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, catalog.ErrInvalidQuery) {
			s.sendError(req.ID, err.Error(), 400)
			return
		}
		log.Errorf("Completion %s failed: %v", req.ID, err)
		s.sendError(req.ID, "Internal server error", 500)
		return
	}

	if records == nil {
		records = []catalog.Record{}
	}
	log.Debugf("Request %s: %d results in %v", req.ID, len(records), elapsed)
	s.send(CompletionResponse{
		ID:        req.ID,
		Results:   records,
		Count:     len(records),
		TimeTaken: elapsed.Microseconds(),
	})
}

func (s *Server) handleConfig(req ConfigRequest) {
	var err error
	switch req.Action {
	case ActionSetConfig:
		err = s.cfg.Update(req.MaxLimit, req.DefaultLimit, req.RawLimit)
	case ActionReload:
		err = s.cfg.Reload()
	}

	cfg := s.cfg.Get()
	resp := ConfigResponse{
		ID:           req.ID,
		Status:       "ok",
		MaxLimit:     cfg.Server.MaxLimit,
		DefaultLimit: cfg.Server.DefaultLimit,
		RawLimit:     cfg.Search.RawLimit,
		MaxInput:     cfg.Server.MaxInput,
	}
	if err != nil {
		log.Warnf("Config %s failed: %v", req.Action, err)
		resp.Status = "error"
		resp.Error = err.Error()
	}
	s.send(resp)
}

// syncLimiter picks up rate settings changed by a config reload.
func (s *Server) syncLimiter(cfg *config.Config) {
	if limit := rateLimit(cfg.Server.RateLimit); s.limiter.Limit() != limit {
		s.limiter.SetLimit(limit)
	}
	if s.limiter.Burst() != cfg.Server.RateBurst {
		s.limiter.SetBurst(cfg.Server.RateBurst)
	}
}

func (s *Server) send(response any) {
	if err := s.enc.Encode(response); err != nil {
		log.Errorf("Encoding response: %v", err)
		return
	}
	if err := s.writer.Flush(); err != nil {
		log.Errorf("Writing response: %v", err)
	}
}

func (s *Server) sendError(id, message string, code int) {
	s.send(CompletionError{ID: id, Error: message, Code: code})
}

// rateLimit maps a per-second rate to a limiter limit; zero or less disables limiting.
func rateLimit(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(perSecond)
}

// clampLimit returns requested, or def when requested is unset, capped at max.
func clampLimit(requested, def, max int) int {
	if requested < 1 {
		requested = def
	}
	if max > 0 && requested > max {
		return max
	}
	return requested
}
