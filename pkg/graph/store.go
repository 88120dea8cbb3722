// Package graph is the read-only compressed trie behind the course search.
//
// Nodes live in an arena indexed by a dense NodeID. Each node carries the
// label consumed on its incoming edge and, for nodes that end a complete
// entry, the catalog.Record it resolves to. The topology is never mutated
// after Load or Builder.Build, so a Store is safe to share between goroutines.
package graph

import (
	"github.com/bastiangx/courseserve/pkg/catalog"
)

// RootKey is the serialized id of the root node.
const RootKey = "0"

// NodeID indexes a node in its Store.
type NodeID uint32

// Node is one vertex of the search graph.
type Node struct {
	// Label is the uppercased character sequence of the incoming edge.
	Label  string
	Record *catalog.Record

	key      string
	children []NodeID
}

// Key returns the id the node had in its serialized form.
func (n *Node) Key() string { return n.key }

// Stats summarizes a Store. Records counts distinct records; a record
// indexed under several keys adds one to Records and one RecordNodes per key.
type Stats struct {
	Nodes       int `json:"nodes"`
	Edges       int `json:"edges"`
	Records     int `json:"records"`
	RecordNodes int `json:"record_nodes"`
}

// Store is the whole graph plus its root.
type Store struct {
	nodes []Node
	root  NodeID
	stats Stats
}

func newStore(nodes []Node, root NodeID) *Store {
	s := &Store{nodes: nodes, root: root}
	s.stats.Nodes = len(nodes)
	distinct := make(map[catalog.Record]struct{})
	for i := range nodes {
		s.stats.Edges += len(nodes[i].children)
		if nodes[i].Record != nil {
			s.stats.RecordNodes++
			distinct[*nodes[i].Record] = struct{}{}
		}
	}
	s.stats.Records = len(distinct)
	return s
}

// Root returns the root id. The root's own label is never matched.
func (s *Store) Root() NodeID { return s.root }

// Len returns the number of nodes.
func (s *Store) Len() int { return len(s.nodes) }

// Node returns the node for id, or false when id is out of range.
func (s *Store) Node(id NodeID) (*Node, bool) {
	if int(id) >= len(s.nodes) {
		return nil, false
	}
	return &s.nodes[id], true
}

// OutNeighbors returns the children of id in their stored order, which is
// stable for the lifetime of the Store. The slice must not be modified.
func (s *Store) OutNeighbors(id NodeID) []NodeID {
	if int(id) >= len(s.nodes) {
		return nil
	}
	return s.nodes[id].children
}

// Stats returns node, edge and record counts.
func (s *Store) Stats() Stats { return s.stats }
