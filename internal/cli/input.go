// Package cli handles cmd line input and suggestions for DBG and testing various features
package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/bastiangx/courseserve/internal/utils"
	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/bastiangx/courseserve/pkg/suggest"
	"github.com/charmbracelet/log"
)

// InputHandler reads one query per line and prints the matching records.
//
// A plain line is free-text input. A line starting with '?' is parsed as
// URL query parameters, the same ones the HTTP API takes:
//
//	cs1200 j
//	?prefix=CS&number=1200&professorName=Jane%20Doe&limit=5
//
// Lines starting with ':' are commands (:stats, :limit N, :help).
type InputHandler struct {
	completer    suggest.ICompleter
	suggestLimit int
	in           io.Reader
	out          *log.Logger
	requestCount int
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(completer suggest.ICompleter, limit int, in io.Reader, out io.Writer) *InputHandler {
	return &InputHandler{
		completer:    completer,
		suggestLimit: limit,
		in:           in,
		out: log.NewWithOptions(out, log.Options{
			ReportTimestamp: false,
			ReportCaller:    false,
		}),
	}
}

// Start runs the loop until input ends or ctx is canceled.
func (h *InputHandler) Start(ctx context.Context) error {
	h.out.Print("courseserve CLI [BETA]")
	h.out.Print("type a query and press Enter, :help for commands (Ctrl+C to exit):")

	scanner := bufio.NewScanner(h.in)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := strings.TrimRight(scanner.Text(), "\r\n")
		if strings.TrimSpace(line) == "" {
			continue
		}
		h.handleInput(ctx, line)
	}
	return scanner.Err()
}

func (h *InputHandler) handleInput(ctx context.Context, line string) {
	h.requestCount++
	trimmed := strings.TrimSpace(line)

	switch {
	case strings.HasPrefix(trimmed, ":"):
		h.handleCommand(trimmed[1:])
		return
	case strings.HasPrefix(trimmed, "?"):
		h.handleParams(ctx, trimmed[1:])
		return
	}

	start := time.Now()
	records, err := h.completer.Complete(ctx, line, h.suggestLimit)
	h.report(line, records, err, time.Since(start))
}

func (h *InputHandler) handleParams(ctx context.Context, raw string) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		h.out.Errorf("Bad parameters: %v", err)
		return
	}
	if !values.Has(catalog.ParamLimit) && !values.Has(catalog.ParamInput) {
		values.Set(catalog.ParamLimit, strconv.Itoa(h.suggestLimit))
	}

	q, err := catalog.ParseValues(values)
	if err != nil {
		h.report(raw, nil, err, 0)
		return
	}

	start := time.Now()
	records, err := h.completer.Resolve(ctx, q, h.suggestLimit)
	label := q.Input
	if !q.Raw {
		label = catalog.Label(q.Fields)
	}
	h.report(label, records, err, time.Since(start))
}

func (h *InputHandler) handleCommand(cmd string) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return
	}
	switch fields[0] {
	case "stats":
		stats := h.completer.Stats()
		h.out.Printf("nodes: %s  edges: %s  records: %s",
			utils.FormatWithCommas(stats["nodes"]),
			utils.FormatWithCommas(stats["edges"]),
			utils.FormatWithCommas(stats["records"]))
	case "limit":
		if len(fields) < 2 {
			h.out.Printf("limit: %d", h.suggestLimit)
			return
		}
		n, err := catalog.ParseLimit(fields[1])
		if err != nil {
			h.out.Errorf("Invalid limit %q: %v", fields[1], err)
			return
		}
		h.suggestLimit = n
		h.out.Printf("limit set to %d", n)
	case "help":
		h.out.Print("  <text>               free-text prefix search")
		h.out.Print("  ?prefix=CS&number=.. structured search (limit defaults to the current one)")
		h.out.Print("  :limit [N]           show or set the result limit")
		h.out.Print("  :stats               graph statistics")
	default:
		h.out.Errorf("Unknown command: %s", fields[0])
	}
}

func (h *InputHandler) report(query string, records []catalog.Record, err error, elapsed time.Duration) {
	if err != nil {
		if errors.Is(err, catalog.ErrInvalidQuery) {
			h.out.Errorf("Invalid query: %v", err)
			return
		}
		h.out.Errorf("Search failed: %v", err)
		return
	}
	log.Debugf("Took [ %v ] for query '%s'", elapsed, query)

	if len(records) == 0 {
		h.out.Warnf("No results for '%s'", query)
		return
	}
	h.out.Printf("Found %d results for '%s':", len(records), query)
	for i, r := range records {
		h.out.Print(renderRecord(i+1, r))
	}
}
