package suggest

import (
	"context"
	"sync"

	"github.com/bastiangx/courseserve/internal/utils"
	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/bastiangx/courseserve/pkg/graph"
	"github.com/charmbracelet/log"
)

// DefaultAdvancePenalty is added to the cost of every edge entered right
// after a match point, so direct hits surface before deep subtree walks.
const DefaultAdvancePenalty = 100

// ctxCheckInterval is how many dequeues pass between context checks.
const ctxCheckInterval = 256

// session is the per-call traversal state. Nothing in it outlives a call.
type session struct {
	queue   TraversalQueue
	visited *graph.VisitSet
	seen    map[catalog.Record]struct{}
}

// Searcher runs prefix searches against a read-only Store. It is safe for
// concurrent use: every call gets its own queue and visited set.
type Searcher struct {
	store   *graph.Store
	penalty int
	pool    sync.Pool
}

// SearchOption configures a Searcher.
type SearchOption func(*Searcher)

// WithAdvancePenalty overrides DefaultAdvancePenalty.
func WithAdvancePenalty(penalty int) SearchOption {
	return func(s *Searcher) {
		if penalty >= 0 {
			s.penalty = penalty
		}
	}
}

// NewSearcher returns a Searcher over store.
func NewSearcher(store *graph.Store, opts ...SearchOption) *Searcher {
	s := &Searcher{store: store, penalty: DefaultAdvancePenalty}
	for _, opt := range opts {
		opt(s)
	}
	s.pool.New = func() any {
		return &session{
			visited: store.NewVisitSet(),
			seen:    make(map[catalog.Record]struct{}),
		}
	}
	return s
}

// Store returns the graph the Searcher reads.
func (s *Searcher) Store() *graph.Store { return s.store }

// SearchPrefix returns up to limit records reachable from query, in
// traversal order. A blank query lists entries from the top of the graph.
func (s *Searcher) SearchPrefix(query string, limit int) []catalog.Record {
	results, _ := s.Search(context.Background(), query, limit)
	return results
}

// Search is SearchPrefix with cancellation. On cancellation it returns the
// records collected so far together with ctx.Err().
func (s *Searcher) Search(ctx context.Context, query string, limit int) ([]catalog.Record, error) {
	if limit <= 0 || s.store == nil {
		return nil, nil
	}

	q := utils.NormalizeQuery(query)
	sess := s.acquire()
	defer s.pool.Put(sess)

	mode := ModeMatching
	if q == "" {
		mode = ModeAdvance
	}
	for _, child := range s.store.OutNeighbors(s.store.Root()) {
		n, ok := s.store.Node(child)
		if !ok {
			continue
		}
		sess.queue.Enqueue(QueueItem{
			Priority:  len(n.Label),
			Node:      child,
			Remaining: q,
			Mode:      mode,
		})
	}

	results := make([]catalog.Record, 0, min(limit, 32))
	steps := 0
	for len(results) < limit {
		item, ok := sess.queue.Dequeue()
		if !ok {
			break
		}
		steps++
		if steps%ctxCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return results, err
			}
		}

		var rec *catalog.Record
		if item.Mode == ModeAdvance {
			rec = s.advance(sess, item)
		} else {
			rec = s.match(sess, item)
		}
		if rec == nil {
			continue
		}
		if _, dup := sess.seen[*rec]; dup {
			continue
		}
		sess.seen[*rec] = struct{}{}
		results = append(results, *rec)
	}

	searchNodesExpanded.Observe(float64(sess.visited.Count()))
	return results, nil
}

func (s *Searcher) acquire() *session {
	sess := s.pool.Get().(*session)
	sess.queue.Reset()
	sess.visited.Reset()
	clear(sess.seen)
	return sess
}

// match handles a MATCHING item: consume as much of the remaining query as
// the node label allows, then either descend, switch to advance mode at a
// match point, or prune.
func (s *Searcher) match(sess *session, item QueueItem) *catalog.Record {
	node, ok := s.store.Node(item.Node)
	if !ok {
		log.Debugf("Discarding frontier item for unknown node %d", item.Node)
		return nil
	}
	if !sess.visited.Visit(item.Node) {
		return nil
	}

	q, label := item.Remaining, node.Label
	m := commonPrefixLen(q, label)

	// Both still have characters at m and they disagree: dead end.
	if m < len(q) && m < len(label) {
		return nil
	}

	switch {
	case m == len(label) && m < len(q):
		s.enqueueChildren(sess, item, ModeMatching, q[m:], 0)
		return nil
	case m == len(q), m > 0 && len(q) <= len(label):
		s.enqueueChildren(sess, item, ModeAdvance, "", s.penalty)
		return node.Record
	}
	return nil
}

// advance handles an ADVANCE item. A record is returned and its subtree is
// pushed behind the penalty, so entries below it still surface for broad
// queries but after the records at this depth.
func (s *Searcher) advance(sess *session, item QueueItem) *catalog.Record {
	node, ok := s.store.Node(item.Node)
	if !ok {
		log.Debugf("Discarding frontier item for unknown node %d", item.Node)
		return nil
	}
	if !sess.visited.Visit(item.Node) {
		return nil
	}
	if node.Record != nil {
		s.enqueueChildren(sess, item, ModeAdvance, "", s.penalty)
		return node.Record
	}
	s.enqueueChildren(sess, item, ModeAdvance, "", 0)
	return nil
}

func (s *Searcher) enqueueChildren(sess *session, parent QueueItem, mode Mode, remaining string, bonus int) {
	for _, child := range s.store.OutNeighbors(parent.Node) {
		n, ok := s.store.Node(child)
		if !ok {
			continue
		}
		sess.queue.Enqueue(QueueItem{
			Priority:  parent.Priority + bonus + len(n.Label),
			Node:      child,
			Remaining: remaining,
			Mode:      mode,
		})
	}
}

// commonPrefixLen returns how many leading bytes a and b share.
func commonPrefixLen(a, b string) int {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return i
		}
	}
	return n
}
