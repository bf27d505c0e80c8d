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

package db

import (
	"encoding/csv"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/stockparfait/errors"
)

// DefaultDateColumn is the index column of the harvest dataset.
const DefaultDateColumn = "Fecha"

// HarvestConfig sets the custom layout of the harvest CSV file.
type HarvestConfig struct {
	DateColumn string   `toml:"date_column"` // default: Fecha
	Header     []string `toml:"header"`      // for headless CSV
}

// NewHarvestConfig creates a config with the default column names.
func NewHarvestConfig() *HarvestConfig {
	return &HarvestConfig{DateColumn: DefaultDateColumn}
}

// dateColumn returns the index of the date column in the header, or -1.
func (c *HarvestConfig) dateColumn(header []string) int {
	name := c.DateColumn
	if name == "" {
		name = DefaultDateColumn
	}
	for i, h := range header {
		if strings.TrimSpace(h) == name {
			return i
		}
	}
	return -1
}

// Harvest is the biomass dataset indexed by date, with one column per crop
// (vegetation type). Missing cells are stored as NaN.
type Harvest struct {
	Index  []string    // raw values of the date column, one per row
	Crops  []string    // crop columns in file order
	Values [][]float64 // Values[crop][row]
}

// NumRows is the number of data rows in the dataset.
func (h *Harvest) NumRows() int { return len(h.Index) }

// Column returns the values of the crop column, including NaN for missing
// cells.
func (h *Harvest) Column(crop string) ([]float64, bool) {
	for i, c := range h.Crops {
		if c == crop {
			return h.Values[i], true
		}
	}
	return nil, false
}

// ReadCSVHarvest reads the harvest dataset.
//
// When config defines a header, CSV is assumed to be headless; otherwise the
// CSV file must have a header. In either case, the header must contain the
// date column. Every other column is a crop and must hold numbers; empty cells
// are read as NaN.
func ReadCSVHarvest(r io.Reader, c *HarvestConfig) (*Harvest, error) {
	csvReader := csv.NewReader(r)
	rows, err := csvReader.ReadAll()
	if err != nil {
		return nil, errors.Annotate(err, "failed to read harvest from CSV")
	}
	header := c.Header
	if len(header) == 0 {
		if len(rows) == 0 {
			return nil, errors.Reason("harvest CSV has no header")
		}
		header = rows[0]
		rows = rows[1:]
	}
	dateIdx := c.dateColumn(header)
	if dateIdx < 0 {
		return nil, errors.Reason("harvest CSV requires a '%s' column", c.DateColumn)
	}
	h := &Harvest{}
	colMap := make([]int, len(header)) // CSV column -> crop index, or -1
	for i, name := range header {
		colMap[i] = -1
		if i == dateIdx {
			continue
		}
		colMap[i] = len(h.Crops)
		h.Crops = append(h.Crops, strings.TrimSpace(name))
	}
	h.Values = make([][]float64, len(h.Crops))
	for i := range h.Values {
		h.Values[i] = make([]float64, 0, len(rows))
	}
	for n, row := range rows {
		if len(row) != len(header) {
			return nil, errors.Reason("row %d has %d columns, expected %d",
				n+1, len(row), len(header))
		}
		h.Index = append(h.Index, row[dateIdx])
		for i, cell := range row {
			crop := colMap[i]
			if crop < 0 {
				continue
			}
			v := math.NaN()
			if s := strings.TrimSpace(cell); s != "" {
				if v, err = strconv.ParseFloat(s, 64); err != nil {
					return nil, errors.Annotate(err, "failed to parse %s in row %d: %s",
						h.Crops[crop], n+1, cell)
				}
			}
			h.Values[crop] = append(h.Values[crop], v)
		}
	}
	return h, nil
}
