package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// Serialized is the on-disk shape of the graph: a directed-graph export with
// nodes keyed by string id, attributes {c: label, d?: record}, and an edge list.
type Serialized struct {
	Options    *SerializedOptions `json:"options,omitempty" msgpack:"options,omitempty"`
	Attributes map[string]any     `json:"attributes,omitempty" msgpack:"attributes,omitempty"`
	Nodes      []SerializedNode   `json:"nodes" msgpack:"nodes"`
	Edges      []SerializedEdge   `json:"edges" msgpack:"edges"`
}

// SerializedOptions mirrors the graph options written by the corpus build.
type SerializedOptions struct {
	Type           string `json:"type,omitempty" msgpack:"type,omitempty"`
	Multi          bool   `json:"multi" msgpack:"multi"`
	AllowSelfLoops bool   `json:"allowSelfLoops" msgpack:"allowSelfLoops"`
}

// SerializedNode is one node entry.
type SerializedNode struct {
	Key        string         `json:"key" msgpack:"key"`
	Attributes NodeAttributes `json:"attributes" msgpack:"attributes"`
}

// NodeAttributes holds the edge label and the optional record.
type NodeAttributes struct {
	C string          `json:"c" msgpack:"c"`
	D *catalog.Record `json:"d,omitempty" msgpack:"d,omitempty"`
}

// SerializedEdge is a directed edge between two node keys.
type SerializedEdge struct {
	Key    string `json:"key,omitempty" msgpack:"key,omitempty"`
	Source string `json:"source" msgpack:"source"`
	Target string `json:"target" msgpack:"target"`
}

// LoadFile reads a serialized graph from path, picking the codec from the
// file extension.
func LoadFile(path string) (*Store, error) {
	format, err := DetectFileFormat(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file %s: %w", path, err)
	}
	log.Debugf("Loading %s graph from %s (%d bytes)", format, path, len(data))
	return Decode(data, format)
}

// Load reads a JSON serialized graph.
func Load(r io.Reader) (*Store, error) {
	var sg Serialized
	if err := json.NewDecoder(r).Decode(&sg); err != nil {
		return nil, fmt.Errorf("failed to decode graph json: %w", err)
	}
	return FromSerialized(&sg)
}

// Decode parses data in the given format.
func Decode(data []byte, format FileFormat) (*Store, error) {
	var sg Serialized
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &sg); err != nil {
			return nil, fmt.Errorf("failed to decode graph json: %w", err)
		}
	case FormatMsgpack:
		if err := msgpack.NewDecoder(bytes.NewReader(data)).Decode(&sg); err != nil {
			return nil, fmt.Errorf("failed to decode graph msgpack: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported graph format: %v", format)
	}
	return FromSerialized(&sg)
}

// FromSerialized validates sg and builds the arena. It fails with a
// *CorruptGraphError on duplicate or unknown node ids, self-loops, cycles,
// or a missing root.
func FromSerialized(sg *Serialized) (*Store, error) {
	index := make(map[string]NodeID, len(sg.Nodes))
	nodes := make([]Node, len(sg.Nodes))

	for i, sn := range sg.Nodes {
		if _, dup := index[sn.Key]; dup {
			return nil, &CorruptGraphError{Reason: "duplicate node id", NodeID: sn.Key}
		}
		index[sn.Key] = NodeID(i)

		n := Node{key: sn.Key, Label: strings.ToUpper(sn.Attributes.C)}
		if d := sn.Attributes.D; d != nil {
			if d.IsZero() {
				log.Debugf("Dropping empty record on node %s", sn.Key)
			} else {
				rec := *d
				n.Record = &rec
			}
		}
		nodes[i] = n
	}

	root, ok := index[RootKey]
	if !ok {
		return nil, &CorruptGraphError{Reason: "missing root node", NodeID: RootKey}
	}

	type edge struct{ from, to NodeID }
	seen := make(map[edge]struct{}, len(sg.Edges))
	for _, se := range sg.Edges {
		from, ok := index[se.Source]
		if !ok {
			return nil, &CorruptGraphError{Reason: "edge references unknown source", NodeID: se.Source}
		}
		to, ok := index[se.Target]
		if !ok {
			return nil, &CorruptGraphError{Reason: "edge references unknown target", NodeID: se.Target}
		}
		if from == to {
			return nil, &CorruptGraphError{Reason: "self-loop", NodeID: se.Source}
		}
		e := edge{from, to}
		if _, dup := seen[e]; dup {
			log.Debugf("Skipping duplicate edge %s -> %s", se.Source, se.Target)
			continue
		}
		seen[e] = struct{}{}
		nodes[from].children = append(nodes[from].children, to)
	}

	if id, cyclic := findCycle(nodes); cyclic {
		return nil, &CorruptGraphError{Reason: "cycle", NodeID: nodes[id].key}
	}

	store := newStore(nodes, root)
	st := store.Stats()
	log.Debugf("Graph loaded: nodes=[%d] edges=[%d] records=[%d]", st.Nodes, st.Edges, st.Records)
	return store, nil
}

// findCycle runs an iterative three-color DFS over every node and returns a
// node on the first back edge it finds.
func findCycle(nodes []Node) (NodeID, bool) {
	const (
		white = iota
		gray
		black
	)
	color := make([]uint8, len(nodes))

	type frame struct {
		id   NodeID
		next int
	}
	var stack []frame

	for start := range nodes {
		if color[start] != white {
			continue
		}
		color[start] = gray
		stack = append(stack[:0], frame{id: NodeID(start)})

		for len(stack) > 0 {
			top := &stack[len(stack)-1]
			children := nodes[top.id].children
			if top.next == len(children) {
				color[top.id] = black
				stack = stack[:len(stack)-1]
				continue
			}
			child := children[top.next]
			top.next++
			switch color[child] {
			case gray:
				return child, true
			case white:
				color[child] = gray
				stack = append(stack, frame{id: child})
			}
		}
	}
	return 0, false
}

// Export converts a Store back into its serialized form. Node keys are kept
// from the source graph when present, otherwise the arena index is used.
func Export(s *Store) *Serialized {
	sg := &Serialized{
		Options: &SerializedOptions{Type: "directed"},
		Nodes:   make([]SerializedNode, len(s.nodes)),
		Edges:   make([]SerializedEdge, 0, s.stats.Edges),
	}
	for i := range s.nodes {
		n := &s.nodes[i]
		sn := SerializedNode{Key: n.key, Attributes: NodeAttributes{C: n.Label}}
		if n.Record != nil {
			rec := *n.Record
			sn.Attributes.D = &rec
		}
		sg.Nodes[i] = sn
	}
	for i := range s.nodes {
		for _, child := range s.nodes[i].children {
			sg.Edges = append(sg.Edges, SerializedEdge{
				Source: s.nodes[i].key,
				Target: s.nodes[child].key,
			})
		}
	}
	return sg
}

// WriteFile serializes s to path in the format implied by its extension.
func WriteFile(s *Store, path string) error {
	format, err := FormatFromExtension(path)
	if err != nil {
		return err
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create graph file %s: %w", path, err)
	}
	defer file.Close()

	sg := Export(s)
	switch format {
	case FormatMsgpack:
		err = msgpack.NewEncoder(file).Encode(sg)
	default:
		err = json.NewEncoder(file).Encode(sg)
	}
	if err != nil {
		return fmt.Errorf("failed to encode graph to %s: %w", path, err)
	}
	return nil
}
