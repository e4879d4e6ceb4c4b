// Package glimpse builds schema snapshots of tabular data files. A glimpse
// records row and column counts plus one descriptor per column: name,
// inferred type tag and a sample value.
package glimpse

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/vjranagit/curvecatalog/pkg/types"
)

// dateLayouts are the layouts probed during datetime inference.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"01/02/2006",
}

// missingTokens are cell values treated as missing during inference.
var missingTokens = map[string]bool{
	"":    true,
	"NA":  true,
	"NaN": true,
	"nan": true,
}

// FromFile builds a glimpse from a CSV file on disk.
func FromFile(path string) (*types.Glimpse, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer file.Close()

	return FromCSV(file)
}

// FromCSV builds a glimpse from CSV data. The first record is the header;
// column types are inferred from the remaining records.
func FromCSV(r io.Reader) (*types.Glimpse, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("empty input")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	inferrers := make([]*columnInferrer, len(header))
	for i, name := range header {
		inferrers[i] = &columnInferrer{name: strings.TrimSpace(name)}
	}

	rows := 0
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", rows+2, err)
		}

		rows++
		for i, cell := range record {
			if i >= len(inferrers) {
				break
			}
			inferrers[i].observe(strings.TrimSpace(cell))
		}
	}

	fields := make([]types.ColumnDescriptor, len(inferrers))
	for i, inf := range inferrers {
		fields[i] = inf.descriptor()
	}

	return &types.Glimpse{
		Rows:    rows,
		Columns: len(fields),
		Fields:  fields,
	}, nil
}

// columnInferrer narrows a column's type as values are observed. The
// lattice is int64 -> float64 -> string; datetime and bool only hold if
// every non-missing value matches.
type columnInferrer struct {
	name     string
	sample   string
	seen     bool
	notInt   bool
	notFloat bool
	notDate  bool
	notBool  bool
}

func (ci *columnInferrer) observe(cell string) {
	if missingTokens[cell] {
		return
	}
	if !ci.seen {
		ci.sample = cell
		ci.seen = true
	}

	if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
		ci.notInt = true
	}
	if _, err := strconv.ParseFloat(cell, 64); err != nil {
		ci.notFloat = true
	}
	if !isDate(cell) {
		ci.notDate = true
	}
	if !isBool(cell) {
		ci.notBool = true
	}
}

func (ci *columnInferrer) descriptor() types.ColumnDescriptor {
	return types.ColumnDescriptor{
		Name:   ci.name,
		Type:   ci.columnType(),
		Sample: ci.sample,
	}
}

func (ci *columnInferrer) columnType() types.ColumnType {
	if !ci.seen {
		// A column with no observed values stays a string column.
		return types.TypeString
	}

	switch {
	case !ci.notBool:
		return types.TypeBool
	case !ci.notInt:
		return types.TypeInt64
	case !ci.notFloat:
		return types.TypeFloat64
	case !ci.notDate:
		return types.TypeDatetime
	default:
		return types.TypeString
	}
}

func isDate(cell string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, cell); err == nil {
			return true
		}
	}
	return false
}

func isBool(cell string) bool {
	switch strings.ToLower(cell) {
	case "true", "false":
		return true
	}
	return false
}
