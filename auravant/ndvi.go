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

package auravant

import (
	"context"
	"net/url"
	"strconv"
	"strings"

	"github.com/stockparfait/auravant/db"
	"github.com/stockparfait/auravant/stats"
	"github.com/stockparfait/auravant/table"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/logging"
)

// NDVIRecord is the mean NDVI of a field on a date.
type NDVIRecord struct {
	Date db.Date `json:"date"`
	Mean float64 `json:"ndvi_mean"`
}

var _ table.Row = NDVIRecord{}

// NDVIHeader is the header of the NDVI table.
func NDVIHeader() []string {
	return []string{"date", "ndvi_mean"}
}

// CSV implements table.Row.
func (r NDVIRecord) CSV() []string {
	return []string{r.Date.String(), strconv.FormatFloat(r.Mean, 'f', -1, 64)}
}

type ndviJSON struct {
	NDVI *[]NDVIRecord `json:"ndvi"`
}

// NDVIHistory is a sequence of NDVI records in the order returned by the API,
// which is not necessarily chronological.
type NDVIHistory struct {
	records []NDVIRecord
}

// NewNDVIHistory creates a history from the records, used as is.
func NewNDVIHistory(records []NDVIRecord) *NDVIHistory {
	return &NDVIHistory{records: records}
}

// Records in the API order.
func (h *NDVIHistory) Records() []NDVIRecord { return h.records }

// Len is the number of records.
func (h *NDVIHistory) Len() int { return len(h.records) }

func (h *NDVIHistory) dates() []db.Date {
	dates := make([]db.Date, len(h.records))
	for i, r := range h.records {
		dates[i] = r.Date
	}
	return dates
}

// Bounds are the earliest and the latest dates in the history, or zero values
// if it is empty. Records without a date are ignored.
func (h *NDVIHistory) Bounds() (first, last db.Date) {
	dates := h.dates()
	return db.MinDate(dates...), db.MaxDate(dates...)
}

// Range selects the records within the inclusive date range, keeping their
// order. A zero bound is open on that side; records without a date are never
// selected. An empty history results when from is after to.
func (h *NDVIHistory) Range(from, to db.Date) *NDVIHistory {
	res := []NDVIRecord{}
	for _, r := range h.records {
		if r.Date.InRange(from, to) {
			res = append(res, r)
		}
	}
	return NewNDVIHistory(res)
}

// First is the record at position 0, which is what the "latest" query of the
// API client returns.
func (h *NDVIHistory) First() (NDVIRecord, bool) {
	if len(h.records) == 0 {
		return NDVIRecord{}, false
	}
	return h.records[0], true
}

// MostRecent is the chronologically latest record. For repeated dates the
// earliest in the API order wins.
func (h *NDVIHistory) MostRecent() (NDVIRecord, bool) {
	if len(h.records) == 0 {
		return NDVIRecord{}, false
	}
	res := h.records[0]
	for _, r := range h.records[1:] {
		if r.Date.After(res.Date) {
			res = r
		}
	}
	return res, true
}

// Table of the records with columns date, ndvi_mean.
func (h *NDVIHistory) Table() *table.Table {
	t := table.NewTable(NDVIHeader()...)
	for _, r := range h.records {
		t.AddRow(r)
	}
	return t
}

// Timeseries of the records sorted by date.
func (h *NDVIHistory) Timeseries() *stats.Timeseries {
	data := make([]float64, len(h.records))
	for i, r := range h.records {
		data[i] = r.Mean
	}
	return stats.SortedTimeseries(h.dates(), data)
}

// Summary of the NDVI values, ignoring the dates.
func (h *NDVIHistory) Summary() *stats.Sample {
	return h.Timeseries().Sample()
}

// parseFieldID checks that the field ID is an integer.
func parseFieldID(id string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(id))
	if err != nil {
		return 0, errors.Annotate(err, "field ID must be an integer: '%s'", id)
	}
	return n, nil
}

// fetchNDVI retrieves the complete NDVI history of the field.
func (c *Client) fetchNDVI(ctx context.Context, fieldID string) (*NDVIHistory, error) {
	id, err := parseFieldID(fieldID)
	if err != nil {
		return nil, err
	}
	query := url.Values{}
	query.Set("field_id", strconv.Itoa(id))
	body, err := c.get(ctx, endpointNDVI, query)
	if err != nil {
		return nil, err
	}
	var resp ndviJSON
	if err := decodeRead(endpointNDVI, body, &resp); err != nil {
		return nil, err
	}
	if resp.NDVI == nil {
		return nil, &MalformedResponseError{Op: endpointNDVI, Err: errors.Reason("missing 'ndvi'")}
	}
	logging.Infof(ctx, "fetched %d NDVI records for field %d", len(*resp.NDVI), id)
	return NewNDVIHistory(*resp.NDVI), nil
}

// NDVI returns the NDVI history of the field within the inclusive date range.
// Zero from or to default to the earliest or the latest date of the history,
// respectively. The records are in the API order.
func (c *Client) NDVI(ctx context.Context, fieldID string, from, to db.Date) (*NDVIHistory, error) {
	h, err := c.fetchNDVI(ctx, fieldID)
	if err != nil {
		return nil, err
	}
	first, last := h.Bounds()
	if from.IsZero() {
		from = first
	}
	if to.IsZero() {
		to = last
	}
	return h.Range(from, to), nil
}

// LatestNDVI returns the first record of the NDVI history selected as in NDVI.
//
// Note, that this is the record at position 0 in the API order, not
// necessarily the chronologically latest one. Use NDVI(...).MostRecent() for
// the latter.
func (c *Client) LatestNDVI(ctx context.Context, fieldID string, from, to db.Date) (NDVIRecord, error) {
	h, err := c.NDVI(ctx, fieldID, from, to)
	if err != nil {
		return NDVIRecord{}, err
	}
	r, ok := h.First()
	if !ok {
		return NDVIRecord{}, &NotFoundError{
			Op:      endpointNDVI,
			Kind:    "ndvi",
			ID:      fieldID,
			Message: "no records in the date range " + from.String() + " - " + to.String(),
		}
	}
	return r, nil
}
