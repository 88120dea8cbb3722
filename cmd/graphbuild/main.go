// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main builds a courseserve graph from a CSV of records.

The CSV needs a header row naming any of the columns prefix, number,
professorName and sectionNumber (case-insensitive, any order). Every row is
indexed under all of its search spellings; rows with no values are skipped.

	graphbuild -in sections.csv -out data/graph.json
	graphbuild -in - -out data/graph.msgpack < sections.csv

The output encoding follows the -out extension: .json, or .msgpack/.mpk.
*/
package main

import (
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bastiangx/courseserve/internal/logger"
	"github.com/bastiangx/courseserve/internal/utils"
	"github.com/bastiangx/courseserve/pkg/catalog"
	"github.com/bastiangx/courseserve/pkg/graph"
	"github.com/charmbracelet/log"
)

func main() {
	in := flag.String("in", "", "CSV input file, - for stdin")
	out := flag.String("out", "graph.json", "Output graph file (.json, .msgpack, .mpk)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	flag.Parse()

	logger.Setup(*debugMode)

	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}
	if _, err := graph.FormatFromExtension(*out); err != nil {
		log.Fatalf("Unsupported output: %v", err)
	}

	var r io.Reader = os.Stdin
	if *in != "-" {
		f, err := os.Open(*in)
		if err != nil {
			log.Fatalf("Failed to open input: %v", err)
		}
		defer f.Close()
		r = f
	}

	records, err := readRecords(r)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", *in, err)
	}

	b := graph.NewBuilder()
	for _, rec := range records {
		b.Add(rec)
	}
	store := b.Build()

	if err := graph.WriteFile(store, *out); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}

	stats := store.Stats()
	fmt.Fprintf(os.Stderr, "wrote %s: %s records, %s keys, %s nodes\n", *out,
		utils.FormatWithCommas(len(records)),
		utils.FormatWithCommas(b.Len()),
		utils.FormatWithCommas(stats.Nodes))
}

// readRecords parses CSV rows into records using the header to map columns.
func readRecords(r io.Reader) ([]catalog.Record, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty input")
		}
		return nil, err
	}

	cols := map[string]int{}
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}
	field := func(row []string, name string) string {
		i, ok := cols[strings.ToLower(name)]
		if !ok || i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	known := 0
	for _, name := range []string{catalog.ParamPrefix, catalog.ParamNumber, catalog.ParamProfessorName, catalog.ParamSectionNumber} {
		if _, ok := cols[strings.ToLower(name)]; ok {
			known++
		}
	}
	if known == 0 {
		return nil, fmt.Errorf("header %v names none of prefix, number, professorName, sectionNumber", header)
	}

	var records []catalog.Record
	line := 1
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		rec := catalog.Record{
			Prefix:        field(row, catalog.ParamPrefix),
			Number:        field(row, catalog.ParamNumber),
			ProfessorName: field(row, catalog.ParamProfessorName),
			SectionNumber: field(row, catalog.ParamSectionNumber),
		}
		if rec.IsZero() {
			log.Debugf("Skipping empty row at line %d", line)
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}
