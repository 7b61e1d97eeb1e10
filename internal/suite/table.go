// Package suite replays a fixed table of prover tests.
package suite

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// Column headers of the test table.
const (
	ColName     = "Test Name"
	ColPath     = "Problem Path"
	ColOptions  = "Option String"
	ColExpected = "Expected Status"
)

// Row is one fixed test.
type Row struct {
	Name     string
	Path     string
	Options  string
	Expected string
}

// OptionArgs splits the option string on single spaces. An empty string
// yields no arguments.
func (r Row) OptionArgs() []string {
	if len(r.Options) == 0 {
		return nil
	}
	return strings.Split(r.Options, " ")
}

// Load reads a table file.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open test table: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a CSV table whose first record is the header. Columns are
// matched by name, so their order does not matter.
func Parse(r io.Reader) ([]Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("test table is empty")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, h := range header {
		index[strings.TrimSpace(h)] = i
	}
	for _, col := range []string{ColName, ColPath, ColOptions, ColExpected} {
		if _, ok := index[col]; !ok {
			return nil, fmt.Errorf("test table is missing column %q", col)
		}
	}

	var rows []Row
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(rows)+1, err)
		}
		field := func(col string) string {
			i := index[col]
			if i >= len(record) {
				return ""
			}
			return record[i]
		}
		rows = append(rows, Row{
			Name:     field(ColName),
			Path:     field(ColPath),
			Options:  field(ColOptions),
			Expected: field(ColExpected),
		})
	}
	return rows, nil
}
