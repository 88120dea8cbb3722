package catalog

import (
	"errors"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabel(t *testing.T) {
	testCases := []struct {
		record      Record
		expected    string
		description string
	}{
		{Record{Prefix: "CS"}, "CS", "Prefix only"},
		{Record{Prefix: "CS", Number: "1200"}, "CS 1200", "Course"},
		{Record{Prefix: "CS", Number: "1200", SectionNumber: "001"}, "CS 1200.001", "Section joins number with a dot"},
		{Record{Prefix: "CS", Number: "1200", ProfessorName: "Jane Doe"}, "CS 1200 Jane Doe", "Course and professor"},
		{Record{Prefix: "CS", Number: "1200", ProfessorName: "Jane Doe", SectionNumber: "001"}, "CS 1200.001 Jane Doe", "All fields"},
		{Record{ProfessorName: "Jane Doe"}, "Jane Doe", "Professor only"},
		{Record{Number: "1200"}, "1200", "Number only is trimmed"},
		{Record{}, "", "Empty"},
	}

	for _, tc := range testCases {
		t.Run(tc.description, func(t *testing.T) {
			assert.Equal(t, tc.expected, Label(tc.record))
		})
	}
}

func TestEqual(t *testing.T) {
	a := Record{Prefix: "CS", Number: "1200"}
	assert.True(t, Equal(a, Record{Prefix: "CS", Number: "1200"}))
	assert.False(t, Equal(a, Record{Prefix: "CS", Number: "1200", ProfessorName: "Jane Doe"}), "present vs absent field")
	assert.False(t, Equal(a, Record{Prefix: "cs", Number: "1200"}), "equality is exact")
}

func TestSearchKeys(t *testing.T) {
	keys := SearchKeys(Record{Prefix: "cs", Number: "1200", ProfessorName: "Jane Doe"})
	assert.Equal(t, []string{"CS1200 JANE DOE", "JANE DOE CS1200", "CS 1200 JANE DOE"}, keys)

	keys = SearchKeys(Record{Prefix: "CS", Number: "1200", SectionNumber: "001"})
	assert.Equal(t, []string{"CS1200.001", "CS 1200.001"}, keys)

	keys = SearchKeys(Record{ProfessorName: "Jane Doe"})
	assert.Equal(t, []string{"JANE DOE"}, keys)

	assert.Nil(t, SearchKeys(Record{}))
}

func TestDedupeAndExclude(t *testing.T) {
	a := Record{Prefix: "CS", Number: "1200"}
	b := Record{Prefix: "CS", Number: "1336"}
	in := []Record{a, b, a, b, a}

	out := Dedupe(in)
	assert.Equal(t, []Record{a, b}, out)
	assert.Len(t, in, 5, "input is not modified")

	assert.Equal(t, []Record{b}, Exclude(out, a))
	assert.Empty(t, Exclude(nil, a))
}

func TestParseValues(t *testing.T) {
	q, err := ParseValues(url.Values{"input": {"cs12"}, "limit": {"abc"}})
	require.NoError(t, err)
	assert.True(t, q.Raw, "input wins over everything else")
	assert.Equal(t, "cs12", q.Input)

	q, err = ParseValues(url.Values{"prefix": {"CS"}, "number": {"1200"}, "limit": {"5"}})
	require.NoError(t, err)
	assert.False(t, q.Raw)
	assert.Equal(t, Record{Prefix: "CS", Number: "1200"}, q.Fields)
	assert.Equal(t, 5, q.Limit)

	invalid := []struct {
		values      url.Values
		description string
	}{
		{url.Values{}, "Nothing"},
		{url.Values{"limit": {"5"}}, "Limit without fields"},
		{url.Values{"prefix": {"CS"}}, "Fields without limit"},
		{url.Values{"prefix": {"CS"}, "limit": {"ten"}}, "Non-numeric limit"},
		{url.Values{"prefix": {"CS"}, "limit": {"0"}}, "Zero limit"},
		{url.Values{"prefix": {"  "}, "limit": {"3"}}, "Blank field"},
	}
	for _, tc := range invalid {
		t.Run(tc.description, func(t *testing.T) {
			_, err := ParseValues(tc.values)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidQuery))
			var qe *InvalidQueryError
			assert.True(t, errors.As(err, &qe))
		})
	}
}
