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
	"math"
	"testing"

	"github.com/stockparfait/testutil"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSample(t *testing.T) {
	t.Parallel()

	Convey("Sample works correctly", t, func() {
		data := []float64{1.5, 2.0, 2.5, 0.0}

		Convey("Data is correct", func() {
			So(NewSample(data).Data(), ShouldResemble, data)
			So(NewSample(data).Len(), ShouldEqual, 4)
		})

		Convey("Copy indeed copies data", func() {
			d := []float64{1.0, 2.0}
			s := NewSample(d)
			s2 := s.Copy()
			d[1] = 3.0
			So(s.Data(), ShouldResemble, d)
			So(s2.Data(), ShouldResemble, []float64{1.0, 2.0})
		})

		Convey("DropNaN", func() {
			s := NewSample([]float64{math.NaN(), 1.0, math.NaN(), 4.0})
			So(s.DropNaN().Data(), ShouldResemble, []float64{1.0, 4.0})
			So(NewSample([]float64{math.NaN()}).DropNaN().Len(), ShouldEqual, 0)
		})

		Convey("Min and Max", func() {
			So(NewSample(data).Max(), ShouldEqual, 2.5)
			So(NewSample(data).Min(), ShouldEqual, 0.0)
			So(math.IsNaN(NewSample(nil).Max()), ShouldBeTrue)
			So(math.IsNaN(NewSample(nil).Min()), ShouldBeTrue)
		})

		Convey("Mean", func() {
			So(NewSample(data).Mean(), ShouldEqual, 1.5)
			So(NewSample([]float64{2.0, 4.0}).Mean(), ShouldEqual, 3.0)
			So(math.IsNaN(NewSample([]float64{}).Mean()), ShouldBeTrue)
		})

		Convey("StdDev", func() {
			So(testutil.RoundSlice([]float64{NewSample(data).StdDev()}, 5),
				ShouldResemble, testutil.RoundSlice([]float64{math.Sqrt(0.875 * 4 / 3)}, 5))
			So(NewSample([]float64{2.0}).StdDev(), ShouldEqual, 0.0)
			So(math.IsNaN(NewSample(nil).StdDev()), ShouldBeTrue)
		})

		Convey("Quantiles", func() {
			s := NewSample([]float64{4, 1, 3, 2, 5})
			So(s.Median(), ShouldEqual, 3.0)
			So(s.Quantile(0), ShouldEqual, 1.0)
			So(s.Quantile(1), ShouldEqual, 5.0)
			So(s.Data(), ShouldResemble, []float64{4, 1, 3, 2, 5})
		})
	})
}
