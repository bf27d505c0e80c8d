// Copyright 2022 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package table holds ordered rows with named columns, as returned by the read
// operations of the API client, and writes them out as CSV, aligned text, JSON
// records or an Excel workbook.
package table

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
	"github.com/xuri/excelize/v2"
)

// Row interface that a table row representation must implement. Typed rows
// keep their fields accessible to callers through a type assertion.
type Row interface {
	CSV() []string // an encoding/csv compatible row representation
}

// Table container.
//
// A typical use:
//   type FarmRow struct {
//     ID string
//     Fields int
//   }
//
//   func (r FarmRow) CSV() []string {
//     return []string{r.ID, fmt.Sprintf("%d", r.Fields)}
//   }
//   t := NewTable("id_farm", "N_fields")
//   t.AddRow(FarmRow{"12", 3}, FarmRow{"15", 1})
type Table struct {
	Header []string // optional, may be nil
	Rows   []Row
}

// NewTable creates a new Table instance with optional column headers. It is
// expected that, when present, the number of column headers is the same as the
// number of elements in each Row.
func NewTable(header ...string) *Table {
	return &Table{Header: header}
}

// AddRow adds one or more rows to the table.
func (t *Table) AddRow(rows ...Row) {
	t.Rows = append(t.Rows, rows...)
}

// Len is the number of rows.
func (t *Table) Len() int { return len(t.Rows) }

// Column returns the index of the named column, or -1.
func (t *Table) Column(name string) int {
	for i, h := range t.Header {
		if h == name {
			return i
		}
	}
	return -1
}

// Params are parameters for pretty-printing or export of Table data.
type Params struct {
	Rows        int  // max. number of rows to write; 0 = unlimited (default)
	NoHeader    bool // whether to print the header, default - yes
	MaxColWidth int  // for WriteText only; 0 = unlimited, otherwise must be >= 4
}

// rows returns the rows limited by p.Rows.
func (t *Table) rows(p Params) []Row {
	if p.Rows > 0 && p.Rows < len(t.Rows) {
		return t.Rows[:p.Rows]
	}
	return t.Rows
}

// WriteCSV writes the entire table to w in CSV format.
func (t *Table) WriteCSV(w io.Writer, p Params) error {
	cw := csv.NewWriter(w)
	if !p.NoHeader && len(t.Header) > 0 {
		if err := cw.Write(t.Header); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
	}
	for _, r := range t.rows(p) {
		if err := cw.Write(r.CSV()); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Annotate(err, "failed to flush written rows")
	}
	return nil
}

// jsonRecord is a row encoded as a JSON object with the keys in the header
// order. Cells of numeric columns are written as JSON numbers.
type jsonRecord struct {
	keys    []string
	cells   []string
	numeric []bool
}

var _ json.Marshaler = jsonRecord{}

func (r jsonRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, errors.Annotate(err, "failed to encode key '%s'", k)
		}
		buf.Write(key)
		buf.WriteByte(':')
		if r.numeric[i] {
			buf.WriteString(r.cells[i])
			continue
		}
		v, err := json.Marshal(r.cells[i])
		if err != nil {
			return nil, errors.Annotate(err, "failed to encode value of '%s'", k)
		}
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// isNumber checks that the cell is a number in both Go and JSON syntax.
func isNumber(s string) bool {
	if _, err := strconv.ParseFloat(s, 64); err != nil {
		return false
	}
	return json.Valid([]byte(s))
}

// WriteJSON writes the table as a JSON list of records keyed by the header,
// in the header order. A column whose cells are all numbers is written as
// numbers, otherwise as strings. The table must have a header whose size
// matches every row.
func (t *Table) WriteJSON(w io.Writer, p Params) error {
	if len(t.Header) == 0 {
		return errors.Reason("JSON records require a header")
	}
	rows := t.rows(p)
	cells := make([][]string, len(rows))
	numeric := make([]bool, len(t.Header))
	for j := range numeric {
		numeric[j] = len(rows) > 0
	}
	for i, r := range rows {
		cells[i] = r.CSV()
		if len(cells[i]) != len(t.Header) {
			return errors.Reason("row %d size [%d] != header size [%d]",
				i, len(cells[i]), len(t.Header))
		}
		for j, c := range cells[i] {
			numeric[j] = numeric[j] && isNumber(c)
		}
	}
	records := make([]jsonRecord, len(rows))
	for i := range rows {
		records[i] = jsonRecord{keys: t.Header, cells: cells[i], numeric: numeric}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return errors.Annotate(err, "failed to write JSON")
	}
	return nil
}

// WriteXLSX writes the table as an Excel workbook with a single sheet. Numeric
// cells are stored as numbers.
func (t *Table) WriteXLSX(w io.Writer, p Params) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	row := 1
	write := func(cells []string) error {
		for i, c := range cells {
			name, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return errors.Annotate(err, "invalid cell")
			}
			var v any = c
			if x, err := strconv.ParseFloat(c, 64); err == nil {
				v = x
			}
			if err := f.SetCellValue(sheet, name, v); err != nil {
				return errors.Annotate(err, "failed to set cell %s", name)
			}
		}
		row++
		return nil
	}

	if !p.NoHeader && len(t.Header) > 0 {
		if err := write(t.Header); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
	}
	for _, r := range t.rows(p) {
		if err := write(r.CSV()); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	if err := f.Write(w); err != nil {
		return errors.Annotate(err, "failed to write workbook")
	}
	return nil
}

// WriteText writes the table as a text formatted for ease of reading.
func (t *Table) WriteText(w io.Writer, p Params) error {
	if p.MaxColWidth != 0 && p.MaxColWidth < 4 {
		return errors.Reason("MaxColWidth [%d] must be 0 or >= 4", p.MaxColWidth)
	}
	header := !p.NoHeader && len(t.Header) > 0
	var widths []int
	update := func(row []string) error {
		if len(row) == 0 {
			return errors.Reason("row size = 0")
		}
		if len(widths) == 0 {
			widths = make([]int, len(row))
		}
		if len(row) != len(widths) {
			return errors.Reason("row size [%d] != expected size [%d]",
				len(row), len(widths))
		}
		for i := range widths {
			l := len([]rune(row[i]))
			if p.MaxColWidth > 0 && l > p.MaxColWidth {
				l = p.MaxColWidth
			}
			if widths[i] < l {
				widths[i] = l
			}
		}
		return nil
	}

	write := func(row []string) error {
		cells := make([]string, len(row))
		for i, s := range row {
			if r := []rune(s); len(r) > widths[i] {
				s = string(r[:widths[i]-2]) + ".."
			}
			cells[i] = fmt.Sprintf("%[2]*[1]s", s, widths[i])
		}
		_, err := fmt.Fprintf(w, "%s\n", strings.Join(cells, " | "))
		return err
	}

	if header {
		if err := update(t.Header); err != nil {
			return errors.Annotate(err, "failed to update header widths")
		}
	}
	rows := t.rows(p)
	for _, r := range rows {
		if err := update(r.CSV()); err != nil {
			return errors.Annotate(err, "failed to update row widths")
		}
	}

	if header {
		if err := write(t.Header); err != nil {
			return errors.Annotate(err, "failed to write header")
		}
		dashes := make([]string, len(widths))
		for i, n := range widths {
			dashes[i] = strings.Repeat("-", n)
		}
		if err := write(dashes); err != nil {
			return errors.Annotate(err, "failed to write header separator")
		}
	}
	for _, r := range rows {
		if err := write(r.CSV()); err != nil {
			return errors.Annotate(err, "failed to write row")
		}
	}
	return nil
}
