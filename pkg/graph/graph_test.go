package graph

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleGraph = `{
  "options": {"type": "directed", "multi": false, "allowSelfLoops": false},
  "attributes": {},
  "nodes": [
    {"key": "0", "attributes": {"c": ""}},
    {"key": "1", "attributes": {"c": "cs"}},
    {"key": "2", "attributes": {"c": "1200", "d": {"prefix": "CS", "number": "1200"}}},
    {"key": "3", "attributes": {"c": " smith", "d": {"prefix": "CS", "number": "1200", "professorName": "Smith"}}}
  ],
  "edges": [
    {"source": "0", "target": "1"},
    {"source": "1", "target": "2"},
    {"source": "2", "target": "3"}
  ]
}`

func TestLoad(t *testing.T) {
	store, err := Load(strings.NewReader(sampleGraph))
	require.NoError(t, err)

	assert.Equal(t, Stats{Nodes: 4, Edges: 3, Records: 2, RecordNodes: 2}, store.Stats())

	root, ok := store.Node(store.Root())
	require.True(t, ok)
	assert.Equal(t, RootKey, root.Key())

	children := store.OutNeighbors(store.Root())
	require.Len(t, children, 1)
	cs, _ := store.Node(children[0])
	assert.Equal(t, "CS", cs.Label, "labels are uppercased on load")
	assert.Nil(t, cs.Record)

	course, _ := store.Node(store.OutNeighbors(children[0])[0])
	require.NotNil(t, course.Record)
	assert.Equal(t, catalog.Record{Prefix: "CS", Number: "1200"}, *course.Record)

	_, ok = store.Node(NodeID(99))
	assert.False(t, ok)
	assert.Nil(t, store.OutNeighbors(NodeID(99)))
}

func TestLoad_Corrupt(t *testing.T) {
	testCases := []struct {
		graph       string
		node        string
		description string
	}{
		{`{"nodes":[{"key":"1","attributes":{"c":"A"}}],"edges":[]}`, "0", "Missing root"},
		{`{"nodes":[{"key":"0","attributes":{"c":""}}],"edges":[{"source":"0","target":"9"}]}`, "9", "Unknown target"},
		{`{"nodes":[{"key":"0","attributes":{"c":""}}],"edges":[{"source":"7","target":"0"}]}`, "7", "Unknown source"},
		{`{"nodes":[{"key":"0","attributes":{"c":""}}],"edges":[{"source":"0","target":"0"}]}`, "0", "Self-loop"},
		{`{"nodes":[{"key":"0","attributes":{"c":""}},{"key":"0","attributes":{"c":"A"}}],"edges":[]}`, "0", "Duplicate node id"},
		{`{"nodes":[{"key":"0","attributes":{"c":""}},{"key":"1","attributes":{"c":"A"}},{"key":"2","attributes":{"c":"B"}}],
		  "edges":[{"source":"0","target":"1"},{"source":"1","target":"2"},{"source":"2","target":"1"}]}`, "", "Cycle"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			_, err := Load(strings.NewReader(tc.graph))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrCorruptGraph))

			var ce *CorruptGraphError
			require.True(t, errors.As(err, &ce))
			if tc.node != "" {
				assert.Equal(t, tc.node, ce.NodeID)
			}
		})
	}
}

func TestLoad_DAG(t *testing.T) {
	// Two paths converge on the same record node; this is a DAG, not a cycle.
	g := `{"nodes":[
		{"key":"0","attributes":{"c":""}},
		{"key":"a","attributes":{"c":"X"}},
		{"key":"b","attributes":{"c":"Y"}},
		{"key":"c","attributes":{"c":"Z","d":{"prefix":"XZ"}}}],
	  "edges":[{"source":"0","target":"a"},{"source":"0","target":"b"},
	           {"source":"a","target":"c"},{"source":"b","target":"c"},{"source":"b","target":"c"}]}`
	store, err := Load(strings.NewReader(g))
	require.NoError(t, err)
	assert.Equal(t, 4, store.Stats().Edges, "duplicate edge is skipped")
}

func TestBuilder(t *testing.T) {
	b := NewBuilder()
	smith := catalog.Record{Prefix: "CS", Number: "1200", ProfessorName: "Smith"}
	jones := catalog.Record{Prefix: "CS", Number: "1200", ProfessorName: "Jones"}

	assert.True(t, b.Insert("cs1200 smith", smith))
	assert.True(t, b.Insert("CS1200 JONES", jones))
	assert.False(t, b.Insert("CS1200 SMITH", jones), "first record wins")
	assert.False(t, b.Insert("   ", jones))
	assert.Equal(t, 2, b.Len())

	store := b.Build()
	assert.Equal(t, Stats{Nodes: 4, Edges: 3, Records: 2, RecordNodes: 2}, store.Stats())

	// root -> "CS1200 " -> {"JONES", "SMITH"}
	top := store.OutNeighbors(store.Root())
	require.Len(t, top, 1)
	shared, _ := store.Node(top[0])
	assert.Equal(t, "CS1200 ", shared.Label)

	var labels []string
	for _, id := range store.OutNeighbors(top[0]) {
		n, _ := store.Node(id)
		labels = append(labels, n.Label)
		require.NotNil(t, n.Record)
	}
	assert.Equal(t, []string{"JONES", "SMITH"}, labels)
}

func TestStats_DistinctRecords(t *testing.T) {
	b := NewBuilder()
	b.Add(catalog.Record{Prefix: "CS", Number: "1200", ProfessorName: "Jane Doe"})
	b.Add(catalog.Record{Prefix: "CS", Number: "1336", ProfessorName: "Lee"})
	b.Add(catalog.Record{Prefix: "MATH", Number: "2413"})

	st := b.Build().Stats()
	assert.Equal(t, 3, st.Records, "one per record, however many keys index it")
	assert.Equal(t, 3+3+2, st.RecordNodes)
}

func TestBuilder_PrefixKeyHoldsRecord(t *testing.T) {
	b := NewBuilder()
	course := catalog.Record{Prefix: "CS", Number: "1200"}
	section := catalog.Record{Prefix: "CS", Number: "1200", SectionNumber: "001"}
	b.Insert("CS1200", course)
	b.Insert("CS1200.001", section)

	store := b.Build()
	top := store.OutNeighbors(store.Root())
	require.Len(t, top, 1)
	n, _ := store.Node(top[0])
	assert.Equal(t, "CS1200", n.Label)
	require.NotNil(t, n.Record)
	assert.Equal(t, course, *n.Record)

	child, _ := store.Node(store.OutNeighbors(top[0])[0])
	assert.Equal(t, ".001", child.Label)
	assert.Equal(t, section, *child.Record)
}

func TestBuilder_RuneBoundaries(t *testing.T) {
	b := NewBuilder()
	b.Insert("ÉCOLE", catalog.Record{Prefix: "ÉCOLE"})
	b.Insert("ÈRE", catalog.Record{Prefix: "ÈRE"})

	store := b.Build()
	// É and È share a lead byte but must land on separate edges.
	for _, id := range store.OutNeighbors(store.Root()) {
		n, _ := store.Node(id)
		assert.True(t, strings.HasPrefix(n.Label, "É") || strings.HasPrefix(n.Label, "È"), n.Label)
	}
	assert.Len(t, store.OutNeighbors(store.Root()), 2)
}

func TestExportRoundTrip(t *testing.T) {
	b := NewBuilder()
	b.Add(catalog.Record{Prefix: "CS", Number: "1200", ProfessorName: "Jane Doe"})
	b.Add(catalog.Record{Prefix: "CS", Number: "1336", ProfessorName: "Lee"})
	built := b.Build()

	dir := t.TempDir()
	for _, name := range []string{"graph.json", "graph.msgpack"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			require.NoError(t, WriteFile(built, path))

			loaded, err := LoadFile(path)
			require.NoError(t, err)
			assert.Equal(t, built.Stats(), loaded.Stats())
			assert.Equal(t, Export(built), Export(loaded))
		})
	}
}

func TestDetectFileFormat(t *testing.T) {
	dir := t.TempDir()

	_, err := DetectFileFormat(filepath.Join(dir, "graph.txt"))
	assert.Error(t, err)

	_, err = DetectFileFormat(filepath.Join(dir, "missing.json"))
	assert.Error(t, err)

	empty := filepath.Join(dir, "empty.json")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = DetectFileFormat(empty)
	assert.Error(t, err, "too small")

	f, err := FormatFromExtension("corpus.MSGPACK")
	require.NoError(t, err)
	assert.Equal(t, FormatMsgpack, f)
}

func TestVisitSet(t *testing.T) {
	store := NewBuilder().Build()
	v := store.NewVisitSet()

	assert.True(t, v.Visit(0))
	assert.False(t, v.Visit(0))
	assert.True(t, v.Visited(0))
	assert.True(t, v.Visit(130), "grows past the initial size")
	assert.Equal(t, 2, v.Count())

	v.Reset()
	assert.False(t, v.Visited(0))
	assert.False(t, v.Visited(130))
}
