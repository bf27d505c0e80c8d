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
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDate(t *testing.T) {
	t.Parallel()

	Convey("Date type", t, func() {
		Convey("parses dates and timestamps", func() {
			d, err := NewDateFromString("2023-06-01")
			So(err, ShouldBeNil)
			So(d, ShouldResemble, NewDate(2023, 6, 1))

			d, err = NewDateFromString("2023-06-01T13:45:00Z")
			So(err, ShouldBeNil)
			So(d, ShouldResemble, NewDate(2023, 6, 1))

			d, err = NewDateFromString("2023-06-01 23:59:59")
			So(err, ShouldBeNil)
			So(d, ShouldResemble, NewDate(2023, 6, 1))

			d, err = NewDateFromString("")
			So(err, ShouldBeNil)
			So(d.IsZero(), ShouldBeTrue)

			_, err = NewDateFromString("yesterday")
			So(err, ShouldNotBeNil)
		})

		Convey("converts from time", func() {
			tm := time.Date(2019, time.January, 2, 15, 0, 0, 0, time.UTC)
			So(NewDateFromTime(tm), ShouldResemble, NewDate(2019, 1, 2))
		})

		Convey("compares the dates correctly", func() {
			So(NewDate(2019, 10, 15).After(NewDate(2018, 11, 25)), ShouldBeTrue)
			So(NewDate(2019, 10, 15).Before(NewDate(2019, 11, 25)), ShouldBeTrue)
			So(NewDate(2019, 10, 15).Before(NewDate(2019, 10, 25)), ShouldBeTrue)
			So(NewDate(2019, 10, 15).After(NewDate(2019, 10, 5)), ShouldBeTrue)
			So(NewDate(2019, 10, 15).Before(NewDate(2019, 10, 15)), ShouldBeFalse)
		})

		Convey("MinDate and MaxDate", func() {
			So(MaxDate().IsZero(), ShouldBeTrue)
			d1 := NewDate(2018, 10, 15)
			d2 := NewDate(2019, 12, 1)
			d3 := NewDate(2019, 11, 30)
			So(MaxDate(d1, d2, d3), ShouldResemble, d2)
			So(MinDate(d2, d1, d3), ShouldResemble, d1)
			So(MinDate(Date{}, d3), ShouldResemble, d3)
		})

		Convey("InRange is inclusive", func() {
			d := NewDate(2023, 3, 1)
			So(d.InRange(NewDate(2023, 3, 1), NewDate(2023, 3, 1)), ShouldBeTrue)
			So(d.InRange(Date{}, NewDate(2023, 2, 28)), ShouldBeFalse)
			So(d.InRange(NewDate(2023, 3, 2), Date{}), ShouldBeFalse)
			So(d.InRange(Date{}, Date{}), ShouldBeTrue)
			So(Date{}.InRange(Date{}, Date{}), ShouldBeFalse)
		})

		Convey("JSON", func() {
			var d Date
			So(json.Unmarshal([]byte(`"2016-02-29"`), &d), ShouldBeNil)
			So(d, ShouldResemble, NewDate(2016, 2, 29))
			js, err := json.Marshal(d)
			So(err, ShouldBeNil)
			So(string(js), ShouldEqual, `"2016-02-29"`)
			So(json.Unmarshal([]byte(`20160229`), &d), ShouldNotBeNil)
		})

		Convey("flag value", func() {
			var d Date
			So(d.Set("2023-03-01"), ShouldBeNil)
			So(d, ShouldResemble, NewDate(2023, 3, 1))
			So(d.Set("March"), ShouldNotBeNil)
			So(d, ShouldResemble, NewDate(2023, 3, 1))
		})
	})
}
