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

package stats

import (
	"sort"

	"github.com/stockparfait/auravant/db"
	"github.com/stockparfait/errors"
)

// Timeseries stores numeric values along with their dates. The dates are
// always sorted in ascending order.
type Timeseries struct {
	dates []db.Date
	data  []float64
}

// NewTimeseries creates a new Timeseries. The dates are expected to be sorted
// in ascending order (not checked). It panics if dates and data have different
// lengths. Note, that the argument slices are used as is, not copied.
func NewTimeseries(dates []db.Date, data []float64) *Timeseries {
	if len(dates) != len(data) {
		panic(errors.Reason("len(dates) [%d] != len(data) [%d]",
			len(dates), len(data)))
	}
	return &Timeseries{dates: dates, data: data}
}

// SortedTimeseries creates a Timeseries from possibly unordered dated
// values. The inputs are copied and not modified. Equal dates keep their
// relative order.
func SortedTimeseries(dates []db.Date, data []float64) *Timeseries {
	t := NewTimeseries(dates, data).Copy()
	sort.Stable(byDate{t})
	return t
}

type byDate struct{ t *Timeseries }

func (b byDate) Len() int           { return len(b.t.dates) }
func (b byDate) Less(i, j int) bool { return b.t.dates[i].Before(b.t.dates[j]) }
func (b byDate) Swap(i, j int) {
	b.t.dates[i], b.t.dates[j] = b.t.dates[j], b.t.dates[i]
	b.t.data[i], b.t.data[j] = b.t.data[j], b.t.data[i]
}

// Dates of the Timeseries.
func (t *Timeseries) Dates() []db.Date { return t.dates }

// Data of the Timeseries.
func (t *Timeseries) Data() []float64 { return t.data }

// Len is the number of samples.
func (t *Timeseries) Len() int { return len(t.dates) }

// Copy makes a deep copy of the Timeseries.
func (t *Timeseries) Copy() *Timeseries {
	dates := make([]db.Date, len(t.dates))
	data := make([]float64, len(t.data))
	copy(dates, t.dates)
	copy(data, t.data)
	return NewTimeseries(dates, data)
}

// Check that Timeseries is consistent: the lengths of dates and data are the
// same and the dates are ordered in ascending order. Repeated dates are
// reported as errors, since a series has one value per date.
func (t *Timeseries) Check() error {
	if len(t.dates) != len(t.data) {
		return errors.Reason("len(dates) [%d] != len(data) [%d]",
			len(t.dates), len(t.data))
	}
	for i := 1; i < len(t.dates); i++ {
		if !t.dates[i-1].Before(t.dates[i]) {
			return errors.Reason("dates[%d] = %s >= dates[%d] = %s",
				i-1, t.dates[i-1], i, t.dates[i])
		}
	}
	return nil
}

// rangeSlice returns slice indices for dates to extract an inclusive interval
// between start and end dates.
func rangeSlice(dates []db.Date, start, end db.Date) (s, e int) {
	if start.After(end) {
		return 0, 0
	}
	s = sort.Search(len(dates), func(i int) bool { return !dates[i].Before(start) })
	e = sort.Search(len(dates), func(i int) bool { return dates[i].After(end) })
	if s >= e {
		return 0, 0
	}
	return
}

// Range extracts the sub-series from the inclusive date interval. It may return
// an empty Timeseries, but never nil.
func (t *Timeseries) Range(start, end db.Date) *Timeseries {
	s, e := rangeSlice(t.dates, start, end)
	if s == 0 && e == len(t.dates) {
		return t
	}
	return NewTimeseries(t.dates[s:e], t.data[s:e])
}

// Sample of the values, ignoring the dates.
func (t *Timeseries) Sample() *Sample {
	return NewSample(t.data)
}
