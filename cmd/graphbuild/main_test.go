package main

import (
	"strings"
	"testing"

	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadRecords(t *testing.T) {
	input := `Prefix, number,professorName,sectionNumber
CS,1200,Jane Doe,001
CS,1200,,
,,,
,,John Roe,
`
	records, err := readRecords(strings.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, []catalog.Record{
		{Prefix: "CS", Number: "1200", ProfessorName: "Jane Doe", SectionNumber: "001"},
		{Prefix: "CS", Number: "1200"},
		{ProfessorName: "John Roe"},
	}, records)
}

func TestReadRecords_Errors(t *testing.T) {
	_, err := readRecords(strings.NewReader(""))
	assert.Error(t, err)

	_, err = readRecords(strings.NewReader("a,b\n1,2\n"))
	assert.Error(t, err)
}
