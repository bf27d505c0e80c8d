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
	"encoding/json"
	"flag"
	"fmt"
	"time"

	"github.com/stockparfait/errors"
)

// parseTime accepts the date and timestamp formats seen in Auravant responses
// and in the harvest dataset. Only the calendar date part is kept by Date.
func parseTime(s string) (time.Time, error) {
	if s == "" || s == "0000-00-00" {
		return time.Time{}, nil
	}
	formats := []string{
		"2006-01-02",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05.999Z07:00",
		"2006-01-02T15:04:05.999",
		"2006-01-02 15:04:05.999",
		"02/01/2006",
	}
	var err error
	for _, f := range formats {
		var tm time.Time
		if tm, err = time.Parse(f, s); err == nil {
			return tm, nil
		}
	}
	return time.Time{}, err
}

// Date records a calendar date as year, month and day, without a time
// component.
type Date struct {
	YearVal  uint16
	MonthVal uint8
	DayVal   uint8
}

var _ json.Marshaler = Date{}
var _ json.Unmarshaler = &Date{}
var _ flag.Value = &Date{}

// NewDate is the constructor for Date.
func NewDate(year uint16, month, day uint8) Date {
	return Date{year, month, day}
}

// NewDateFromTime creates a Date instance from a time.Time value, using the
// calendar date in the time's own location.
func NewDateFromTime(t time.Time) Date {
	return Date{
		YearVal:  uint16(t.Year()),
		MonthVal: uint8(t.Month()),
		DayVal:   uint8(t.Day()),
	}
}

// NewDateFromString creates a Date instance from a string representation. Any
// time of day in the string is dropped.
func NewDateFromString(s string) (Date, error) {
	t, err := parseTime(s)
	if err != nil {
		return Date{}, errors.Annotate(err, "failed to parse a Date string: '%s'", s)
	}
	if t.IsZero() {
		return Date{}, nil
	}
	return NewDateFromTime(t), nil
}

func (d Date) Year() uint16 { return d.YearVal }
func (d Date) Month() uint8 { return d.MonthVal }
func (d Date) Day() uint8   { return d.DayVal }

// String representation of the value.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year(), d.Month(), d.Day())
}

// MarshalJSON implements json.Marshaler.
func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler. NOTE: unlike other methods, this
// is a pointer method.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return errors.Annotate(err, "Date JSON must be a string")
	}
	date, err := NewDateFromString(s)
	if err != nil {
		return errors.Annotate(err, "failed to parse Date string")
	}
	*d = date
	return nil
}

// Set implements flag.Value.
func (d *Date) Set(s string) error {
	date, err := NewDateFromString(s)
	if err != nil {
		return err
	}
	*d = date
	return nil
}

// key packs the date into a single comparable integer.
func (d Date) key() uint32 {
	return uint32(d.Year())<<16 | uint32(d.Month())<<8 | uint32(d.Day())
}

// Before compares two Date objects for strict inequality (self < d2).
func (d Date) Before(d2 Date) bool {
	return d.key() < d2.key()
}

// After compares two Date objects for strict inequality, self > d2.
func (d Date) After(d2 Date) bool {
	return d2.Before(d)
}

// IsZero checks whether the date has a zero value.
func (d Date) IsZero() bool {
	return d.Year() == 0 && d.Month() == 0 && d.Day() == 0
}

// MinDate returns the earliest date from the list, or zero value.
func MinDate(dates ...Date) Date {
	var min Date
	for _, d := range dates {
		if min.IsZero() || (!d.IsZero() && min.After(d)) {
			min = d
		}
	}
	return min
}

// MaxDate returns the latest date from the list, or zero value.
func MaxDate(dates ...Date) Date {
	var max Date
	for _, d := range dates {
		if max.IsZero() || (!d.IsZero() && max.Before(d)) {
			max = d
		}
	}
	return max
}

// InRange checks if d is in the inclusive date range. Any of the bounds may be
// zero value, in which case it's ignored.
func (d Date) InRange(start, end Date) bool {
	if d.IsZero() {
		return false
	}
	if !start.IsZero() && start.After(d) {
		return false
	}
	if !end.IsZero() && end.Before(d) {
		return false
	}
	return true
}
