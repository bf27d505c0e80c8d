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
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"
	"github.com/paulmach/orb/planar"
	"github.com/stockparfait/errors"
)

// BBox is an axis-aligned rectangle [minX, minY, maxX, maxY], in the order
// returned by the API.
type BBox [4]float64

var _ json.Unmarshaler = &BBox{}

// UnmarshalJSON implements json.Unmarshaler. It accepts a list of exactly four
// numbers; null leaves the value unchanged.
func (b *BBox) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	var v []flexFloat
	if err := json.Unmarshal(data, &v); err != nil {
		return errors.Annotate(err, "bbox must be a list of numbers")
	}
	if len(v) != 4 {
		return errors.Reason("bbox must have 4 numbers, got %d", len(v))
	}
	for i := range v {
		b[i] = float64(v[i])
	}
	return nil
}

// String prints the box as a compact list, e.g. [0,0,1,1].
func (b BBox) String() string {
	s := make([]string, len(b))
	for i, v := range b {
		s[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return "[" + strings.Join(s, ",") + "]"
}

// Bound converts the box to an orb.Bound.
func (b BBox) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b[0], b[1]}, Max: orb.Point{b[2], b[3]}}
}

// Polygon of a field. The API uses WKT text for shapes; lists of coordinate
// pairs are accepted as well when decoding.
type Polygon struct {
	orb.Polygon
}

var _ json.Unmarshaler = &Polygon{}
var _ json.Marshaler = Polygon{}

// ParsePolygon parses WKT text, e.g. "POLYGON((0 0,1 0,1 1,0 0))".
func ParsePolygon(s string) (Polygon, error) {
	p, err := wkt.UnmarshalPolygon(strings.TrimSpace(s))
	if err != nil {
		return Polygon{}, errors.Annotate(err, "failed to parse WKT polygon")
	}
	return Polygon{p}, nil
}

// NewPolygon creates a single-ring polygon from coordinate pairs.
func NewPolygon(points ...orb.Point) Polygon {
	return Polygon{orb.Polygon{orb.Ring(points)}}
}

// UnmarshalJSON implements json.Unmarshaler.
func (p *Polygon) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return errors.Annotate(err, "failed to decode polygon string")
		}
		if strings.TrimSpace(s) == "" {
			*p = Polygon{}
			return nil
		}
		pp, err := ParsePolygon(s)
		if err != nil {
			return err
		}
		*p = pp
		return nil
	case '[':
		var rings []orb.Ring
		if err := json.Unmarshal(data, &rings); err == nil {
			*p = Polygon{orb.Polygon(rings)}
			return nil
		}
		var ring orb.Ring
		if err := json.Unmarshal(data, &ring); err != nil {
			return errors.Annotate(err, "polygon must be WKT or coordinate lists")
		}
		*p = Polygon{orb.Polygon{ring}}
		return nil
	}
	return errors.Reason("unsupported polygon JSON: %s", string(data))
}

// MarshalJSON implements json.Marshaler, writing WKT text.
func (p Polygon) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// String is the WKT representation, as expected by the API.
func (p Polygon) String() string {
	if len(p.Polygon) == 0 {
		return ""
	}
	return wkt.MarshalString(p.Polygon)
}

// Contains checks whether the point is inside the polygon, in planar
// coordinates.
func (p Polygon) Contains(pt orb.Point) bool {
	if len(p.Polygon) == 0 {
		return false
	}
	return planar.PolygonContains(p.Polygon, pt)
}

// flexFloat is a number that the API may also send as a numeric string.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if s == "null" || s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return errors.Annotate(err, "expected a number, got %s", string(data))
	}
	*f = flexFloat(v)
	return nil
}

// entry is a key-value pair of a JSON object.
type entry[T any] struct {
	Key   string
	Value T
}

// ordered is a JSON object decoded with its key order preserved. The empty
// list [] is accepted as an empty object.
type ordered[T any] []entry[T]

func (m *ordered[T]) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return errors.Annotate(err, "failed to read object")
	}
	switch tok {
	case nil:
		return nil
	case json.Delim('['):
		if dec.More() {
			return errors.Reason("expected an object, got a non-empty list")
		}
		*m = ordered[T]{}
		return nil
	case json.Delim('{'):
	default:
		return errors.Reason("expected an object, got %v", tok)
	}
	res := ordered[T]{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Annotate(err, "failed to read object key")
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Reason("object key must be a string, got %v", tok)
		}
		var v T
		if err := dec.Decode(&v); err != nil {
			return errors.Annotate(err, "failed to decode value of '%s'", key)
		}
		res = append(res, entry[T]{Key: key, Value: v})
	}
	if _, err := dec.Token(); err != nil {
		return errors.Annotate(err, "failed to read object end")
	}
	*m = res
	return nil
}

// shapeJSON is the current geometry of a field.
type shapeJSON struct {
	BBox    BBox      `json:"bbox"`
	Polygon Polygon   `json:"polygon"`
	Area    flexFloat `json:"area"`
}

type fieldJSON struct {
	Name   string `json:"name"`
	Shapes struct {
		Current *shapeJSON `json:"current"`
	} `json:"shapes"`
}

type farmJSON struct {
	Name   string             `json:"name"`
	BBox   BBox               `json:"bbox"`
	Fields *ordered[fieldJSON] `json:"fields"`
}

// snapshotJSON is the response of the getfields endpoint.
type snapshotJSON struct {
	User *struct {
		Farms *ordered[farmJSON] `json:"farms"`
	} `json:"user"`
}

// Field is a bounded parcel within a Farm.
type Field struct {
	ID      string
	FarmID  string
	Name    string
	Area    float64
	Polygon Polygon
	BBox    BBox
}

// Farm is a top-level landholding unit with its fields in snapshot order.
type Farm struct {
	ID     string
	Name   string
	BBox   BBox
	Fields []Field
}

// Snapshot is the full farm/field state of the account at the time of the
// request. Farms and fields are in the order the server listed them.
type Snapshot struct {
	Farms []Farm
}

// Farm finds the farm by ID.
func (s *Snapshot) Farm(id string) (*Farm, bool) {
	for i := range s.Farms {
		if s.Farms[i].ID == id {
			return &s.Farms[i], true
		}
	}
	return nil, false
}

// snapshot converts the decoded response, checking the required keys.
func (r *snapshotJSON) snapshot() (*Snapshot, error) {
	if r.User == nil {
		return nil, errors.Reason("missing 'user'")
	}
	if r.User.Farms == nil {
		return nil, errors.Reason("missing 'user.farms'")
	}
	s := &Snapshot{Farms: make([]Farm, 0, len(*r.User.Farms))}
	for _, fe := range *r.User.Farms {
		if fe.Value.Fields == nil {
			return nil, errors.Reason("farm '%s' has no 'fields'", fe.Key)
		}
		farm := Farm{
			ID:     fe.Key,
			Name:   fe.Value.Name,
			BBox:   fe.Value.BBox,
			Fields: make([]Field, 0, len(*fe.Value.Fields)),
		}
		for _, fd := range *fe.Value.Fields {
			cur := fd.Value.Shapes.Current
			if cur == nil {
				return nil, errors.Reason("field '%s' of farm '%s' has no 'shapes.current'",
					fd.Key, fe.Key)
			}
			farm.Fields = append(farm.Fields, Field{
				ID:      fd.Key,
				FarmID:  fe.Key,
				Name:    fd.Value.Name,
				Area:    float64(cur.Area),
				Polygon: cur.Polygon,
				BBox:    cur.BBox,
			})
		}
		s.Farms = append(s.Farms, farm)
	}
	return s, nil
}
