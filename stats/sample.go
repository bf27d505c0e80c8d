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
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Sample stores unordered set of numerical data (float64) and computes various
// statistics over it. Statistics of an empty sample are NaN.
type Sample struct {
	data   []float64
	sorted []float64 // cached sorted copy for quantiles
}

// NewSample creates a new sample over the data. The slice is used as is.
func NewSample(data []float64) *Sample {
	return &Sample{data: data}
}

// Data returns the sample data.
func (s *Sample) Data() []float64 { return s.data }

// Len is the number of samples.
func (s *Sample) Len() int { return len(s.data) }

// Copy the Sample, so that the original data can be safely modified.
func (s *Sample) Copy() *Sample {
	cp := make([]float64, len(s.data))
	copy(cp, s.data)
	return NewSample(cp)
}

// DropNaN returns a new Sample without the NaN values. Missing values in
// datasets are represented as NaN.
func (s *Sample) DropNaN() *Sample {
	res := make([]float64, 0, len(s.data))
	for _, d := range s.data {
		if !math.IsNaN(d) {
			res = append(res, d)
		}
	}
	return NewSample(res)
}

// Max value of the Sample.
func (s *Sample) Max() float64 {
	if len(s.data) == 0 {
		return math.NaN()
	}
	return floats.Max(s.data)
}

// Min value of the Sample.
func (s *Sample) Min() float64 {
	if len(s.data) == 0 {
		return math.NaN()
	}
	return floats.Min(s.data)
}

// Mean of the Sample.
func (s *Sample) Mean() float64 {
	if len(s.data) == 0 {
		return math.NaN()
	}
	return stat.Mean(s.data, nil)
}

// StdDev is the unbiased standard deviation; it is 0 for a single sample.
func (s *Sample) StdDev() float64 {
	switch len(s.data) {
	case 0:
		return math.NaN()
	case 1:
		return 0
	}
	return stat.StdDev(s.data, nil)
}

// Quantile of the Sample for p in [0..1], using the empirical CDF.
func (s *Sample) Quantile(p float64) float64 {
	if len(s.data) == 0 {
		return math.NaN()
	}
	if s.sorted == nil {
		s.sorted = make([]float64, len(s.data))
		copy(s.sorted, s.data)
		sort.Float64s(s.sorted)
	}
	return stat.Quantile(p, stat.Empirical, s.sorted, nil)
}

// Median of the Sample.
func (s *Sample) Median() float64 { return s.Quantile(0.5) }
