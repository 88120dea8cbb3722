package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/bastiangx/courseserve/pkg/graph"
	"github.com/bastiangx/courseserve/pkg/suggest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCompleter() *suggest.Completer {
	b := graph.NewBuilder()
	b.Add(catalog.Record{Prefix: "CS", Number: "1200", ProfessorName: "Jane Doe"})
	b.Add(catalog.Record{Prefix: "CS", Number: "1200", ProfessorName: "John Roe"})
	b.Add(catalog.Record{Prefix: "CS", Number: "1336", ProfessorName: "Lee"})
	return suggest.NewCompleter(b.Build())
}

func runSession(t *testing.T, input string) string {
	t.Helper()
	var out bytes.Buffer
	h := NewInputHandler(newTestCompleter(), 10, strings.NewReader(input), &out)
	require.NoError(t, h.Start(context.Background()))
	return out.String()
}

func TestInputHandler_FreeText(t *testing.T) {
	out := runSession(t, "cs1200 j\n")
	assert.Contains(t, out, "Found 2 results for 'cs1200 j'")
	assert.Contains(t, out, "Jane Doe")
	assert.Contains(t, out, "John Roe")
	assert.NotContains(t, out, "Lee")
}

func TestInputHandler_Params(t *testing.T) {
	out := runSession(t, "?prefix=CS&number=1200&professorName=Jane%20Doe\n")
	assert.Contains(t, out, "John Roe")
	assert.NotContains(t, out, "1. CS 1200 Jane Doe")
}

func TestInputHandler_InvalidParams(t *testing.T) {
	out := runSession(t, "?limit=5\n?prefix=CS&limit=abc\n")
	assert.Equal(t, 2, strings.Count(out, "Invalid query"))
}

func TestInputHandler_Commands(t *testing.T) {
	out := runSession(t, ":limit 1\ncs\n:limit\n:stats\n:bogus\n")
	assert.Contains(t, out, "limit set to 1")
	assert.Contains(t, out, "Found 1 results for 'cs'")
	assert.Contains(t, out, "limit: 1")
	assert.Contains(t, out, "records: ")
	assert.Contains(t, out, "Unknown command: bogus")
}

func TestInputHandler_NoResults(t *testing.T) {
	out := runSession(t, "math\n\n")
	assert.Contains(t, out, "No results for 'math'")
}

func TestRenderRecord(t *testing.T) {
	line := renderRecord(3, catalog.Record{Prefix: "CS", Number: "1200", SectionNumber: "001", ProfessorName: "Jane Doe"})
	assert.Contains(t, line, "3.")
	assert.Contains(t, line, "CS 1200")
	assert.Contains(t, line, ".001")
	assert.Contains(t, line, "Jane Doe")
}
