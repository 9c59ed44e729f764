// Package input loads the CSV table driving a run and provides the
// interactive picker used to choose it.
package input

import (
	"encoding/csv"
	"os"

	"github.com/pkg/errors"
)

// Row maps column names to the string values of one CSV record.
type Row map[string]string

// Table is the parsed input file. Attributes holds every header column
// except the key column, in header order. Rows are read once at load
// time and never modified.
type Table struct {
	KeyColumn  string
	Attributes []string
	Rows       []Row
}

// Load parses the CSV file at path. The header row is validated once:
// the key column must be present, column names must be non-empty and
// unique. Ragged records fail the whole load.
func Load(path, keyColumn string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open input file %s", path)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse input file")
	}
	if len(records) == 0 {
		return nil, errors.New("input file is empty")
	}

	header := records[0]
	seen := map[string]bool{}
	keyFound := false
	attributes := []string{}
	for _, name := range header {
		if name == "" {
			return nil, errors.New("input header contains an empty column name")
		}
		if seen[name] {
			return nil, errors.Errorf("input header contains duplicate column '%s'", name)
		}
		seen[name] = true
		if name == keyColumn {
			keyFound = true
			continue
		}
		attributes = append(attributes, name)
	}
	if !keyFound {
		return nil, errors.Errorf("input header has no '%s' column", keyColumn)
	}

	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := Row{}
		for i, name := range header {
			row[name] = record[i]
		}
		rows = append(rows, row)
	}

	return &Table{KeyColumn: keyColumn, Attributes: attributes, Rows: rows}, nil
}

// Key returns the row's value for the table's key column.
func (t *Table) Key(row Row) string {
	return row[t.KeyColumn]
}
