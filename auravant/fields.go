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
	"fmt"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/stockparfait/auravant/table"
	"github.com/stockparfait/iterator"
	"github.com/stockparfait/logging"
)

// FarmRow is a row of the farms table.
type FarmRow struct {
	ID        string
	Name      string
	BBox      BBox
	NumFields int
}

var _ table.Row = FarmRow{}

// FarmHeader is the header of the farms table.
func FarmHeader() []string {
	return []string{"id_farm", "name", "bbox", "N_fields"}
}

// CSV implements table.Row.
func (r FarmRow) CSV() []string {
	return []string{r.ID, r.Name, r.BBox.String(), strconv.Itoa(r.NumFields)}
}

// FieldRow is a row of the fields table of a single farm.
type FieldRow struct {
	Field
}

var _ table.Row = FieldRow{}

// FieldHeader is the header of the fields table of a single farm.
func FieldHeader() []string {
	return []string{"id_field", "name", "area", "polygon", "bbox"}
}

func formatArea(a float64) string {
	return strconv.FormatFloat(a, 'f', -1, 64)
}

// CSV implements table.Row.
func (r FieldRow) CSV() []string {
	return []string{r.ID, r.Name, formatArea(r.Area), r.Polygon.String(), r.BBox.String()}
}

// FarmFieldRow is a row of the table of all fields across farms.
type FarmFieldRow struct {
	Field
}

var _ table.Row = FarmFieldRow{}

// FarmFieldHeader is the header of the table of all fields.
func FarmFieldHeader() []string {
	return []string{"id_field", "name", "id_farm", "area", "polygon", "bbox"}
}

// CSV implements table.Row.
func (r FarmFieldRow) CSV() []string {
	return []string{r.ID, r.Name, r.FarmID, formatArea(r.Area), r.Polygon.String(),
		r.BBox.String()}
}

// Snapshot fetches the complete farm/field state of the account.
func (c *Client) Snapshot(ctx context.Context) (*Snapshot, error) {
	body, err := c.get(ctx, endpointFields, nil)
	if err != nil {
		return nil, err
	}
	var resp snapshotJSON
	if err := decodeRead(endpointFields, body, &resp); err != nil {
		return nil, err
	}
	s, err := resp.snapshot()
	if err != nil {
		return nil, &MalformedResponseError{Op: endpointFields, Err: err}
	}
	logging.Infof(ctx, "fetched %d farms", len(s.Farms))
	return s, nil
}

// Fields flattens the snapshot into all fields, farm-major, in snapshot
// order.
func (s *Snapshot) Fields() []Field {
	return iterator.Reduce[Farm, []Field](iterator.FromSlice(s.Farms), nil,
		func(f Farm, acc []Field) []Field { return append(acc, f.Fields...) })
}

// ListFarms returns one row per farm: id_farm, name, bbox, N_fields.
func (c *Client) ListFarms(ctx context.Context) (*table.Table, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	t := table.NewTable(FarmHeader()...)
	for _, f := range s.Farms {
		t.AddRow(FarmRow{ID: f.ID, Name: f.Name, BBox: f.BBox, NumFields: len(f.Fields)})
	}
	return t, nil
}

// ListFields returns the fields of one farm: id_field, name, area, polygon,
// bbox. An unknown farm results in NotFoundError.
func (c *Client) ListFields(ctx context.Context, farmID string) (*table.Table, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	f, ok := s.Farm(farmID)
	if !ok {
		return nil, &NotFoundError{Op: endpointFields, Kind: "farm", ID: farmID}
	}
	t := table.NewTable(FieldHeader()...)
	for _, fd := range f.Fields {
		t.AddRow(FieldRow{fd})
	}
	return t, nil
}

// ListAllFields returns every field of every farm: id_field, name, id_farm,
// area, polygon, bbox.
func (c *Client) ListAllFields(ctx context.Context) (*table.Table, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	t := table.NewTable(FarmFieldHeader()...)
	for _, fd := range s.Fields() {
		t.AddRow(FarmFieldRow{fd})
	}
	return t, nil
}

// LocateFields returns the fields whose polygon contains the point, in the
// format of ListAllFields.
func (c *Client) LocateFields(ctx context.Context, lon, lat float64) (*table.Table, error) {
	s, err := c.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	pt := orb.Point{lon, lat}
	t := table.NewTable(FarmFieldHeader()...)
	for _, fd := range s.Fields() {
		if fd.BBox != (BBox{}) && !fd.BBox.Bound().Contains(pt) {
			continue
		}
		if fd.Polygon.Contains(pt) {
			t.AddRow(FarmFieldRow{fd})
		}
	}
	logging.Debugf(ctx, "%d fields contain %s", t.Len(), pointString(lon, lat))
	return t, nil
}

func pointString(lon, lat float64) string {
	return fmt.Sprintf("(%g, %g)", lon, lat)
}
