package suggest

import (
	"context"
	"errors"
	"slices"
	"strconv"
	"time"

	"github.com/bastiangx/courseserve/internal/utils"
	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/bastiangx/courseserve/pkg/graph"
	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"
)

// Completer answers free-text and structured autocomplete requests on top
// of a Searcher.
type Completer struct {
	searcher *Searcher
	rawGroup singleflight.Group
}

// NewCompleter builds a Completer over store.
func NewCompleter(store *graph.Store, opts ...SearchOption) *Completer {
	return &Completer{searcher: NewSearcher(store, opts...)}
}

// Searcher exposes the underlying prefix searcher.
func (c *Completer) Searcher() *Searcher { return c.searcher }

// Complete runs a single prefix search for free-text input. Identical
// concurrent calls share one traversal.
func (c *Completer) Complete(ctx context.Context, input string, limit int) ([]catalog.Record, error) {
	start := time.Now()
	if limit <= 0 {
		c.observe(kindRaw, start, nil, nil)
		return nil, nil
	}

	key := strconv.Itoa(limit) + "|" + utils.NormalizeQuery(input)
	ch := c.rawGroup.DoChan(key, func() (any, error) {
		return c.searcher.Search(context.WithoutCancel(ctx), input, limit)
	})

	select {
	case <-ctx.Done():
		c.observe(kindRaw, start, nil, ctx.Err())
		return nil, ctx.Err()
	case res := <-ch:
		if res.Shared {
			searchShared.Inc()
		}
		var records []catalog.Record
		if res.Val != nil {
			records = slices.Clone(res.Val.([]catalog.Record))
		}
		c.observe(kindRaw, start, records, res.Err)
		log.Debugf("Raw search %q limit=%d: %d results in %v", input, limit, len(records), time.Since(start))
		return records, res.Err
	}
}

// CompleteFields resolves a structured query. It first searches the most
// specific spelling the fields allow, then the general label while results
// are short, dedupes, drops the query itself and truncates to limit.
func (c *Completer) CompleteFields(ctx context.Context, fields catalog.Record, limit int) ([]catalog.Record, error) {
	start := time.Now()
	if fields.IsZero() {
		err := &catalog.InvalidQueryError{Reason: "no field is set"}
		c.observe(kindFields, start, nil, err)
		return nil, err
	}
	if limit < 1 {
		err := &catalog.InvalidQueryError{Reason: "limit must be positive, got " + strconv.Itoa(limit)}
		c.observe(kindFields, start, nil, err)
		return nil, err
	}

	// One extra slot covers the query's own record, dropped below.
	fetch := limit + 1

	var results []catalog.Record
	if specific := specificSearch(fields); specific != "" {
		found, err := c.searcher.Search(ctx, specific, fetch)
		if err != nil {
			c.observe(kindFields, start, nil, err)
			return nil, err
		}
		results = append(results, found...)
	}

	if len(results) < fetch {
		found, err := c.searcher.Search(ctx, catalog.Label(fields)+" ", fetch)
		if err != nil {
			c.observe(kindFields, start, nil, err)
			return nil, err
		}
		results = append(results, found...)
	}

	results = catalog.Exclude(catalog.Dedupe(results), fields)
	if len(results) > limit {
		results = results[:limit]
	}

	c.observe(kindFields, start, results, nil)
	log.Debugf("Field search %q limit=%d: %d results in %v", catalog.Label(fields), limit, len(results), time.Since(start))
	return results, nil
}

// Resolve dispatches a parsed query. rawLimit is used for free text, which
// carries no limit of its own.
func (c *Completer) Resolve(ctx context.Context, q catalog.Query, rawLimit int) ([]catalog.Record, error) {
	if q.Raw {
		return c.Complete(ctx, q.Input, rawLimit)
	}
	return c.CompleteFields(ctx, q.Fields, q.Limit)
}

// Stats returns counts describing the loaded graph.
func (c *Completer) Stats() map[string]int {
	st := c.searcher.Store().Stats()
	return map[string]int{
		"nodes":        st.Nodes,
		"edges":        st.Edges,
		"records":      st.Records,
		"record_nodes": st.RecordNodes,
	}
}

// specificSearch returns the compact spelling for queries that name a course
// together with a professor: "CS1200.001 " with a section, "CS1200 " without.
func specificSearch(f catalog.Record) string {
	if f.Prefix == "" || f.Number == "" || f.ProfessorName == "" {
		return ""
	}
	return catalog.CompactKey(f) + " "
}

func (c *Completer) observe(kind string, start time.Time, results []catalog.Record, err error) {
	outcome := "hit"
	switch {
	case errors.Is(err, catalog.ErrInvalidQuery):
		outcome = "invalid"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		outcome = "canceled"
	case err != nil:
		outcome = "error"
	case len(results) == 0:
		outcome = "empty"
	}
	searchQueries.WithLabelValues(kind, outcome).Inc()
	if err == nil {
		searchDuration.WithLabelValues(kind).Observe(time.Since(start).Seconds())
		searchResults.WithLabelValues(kind).Observe(float64(len(results)))
	}
}
