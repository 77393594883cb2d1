/*
Copyright © 2019 the climex authors.
This file is part of climex.

climex is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

climex is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with climex.  If not, see <http://www.gnu.org/licenses/>.
*/


package climex

import (
	"math"
	"sort"

	"github.com/ctessum/sparse"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/stat"
)

// ResampleAnnualMean returns a dataset holding the mean of every
// time-dependent variable in ds over each calendar year. Missing (NaN)
// values are ignored; a year with no valid values for a grid cell is NaN.
// The time coordinate of the result holds the last day of each year,
// in the same units and calendar as ds. Variables that do not depend on
// time are copied unchanged.
func ResampleAnnualMean(ds *Dataset) (*Dataset, error) {
	timeDim, err := ds.findAxis([]string{"time", "t"}, "time")
	if err != nil {
		return nil, err
	}
	tv := ds.Vars[timeDim]
	units, err := parseTimeUnits(tv.Attribute("units"), tv.Attribute("calendar"))
	if err != nil {
		return nil, errors.Wrapf(err, "climex: %s: %s", ds.Source, timeDim)
	}

	groups := make(map[int][]int)
	for i, t := range tv.Data.Elements {
		if math.IsNaN(t) {
			return nil, errors.Wrapf(ErrInput, "climex: %s: missing %s value at index %d", ds.Source, timeDim, i)
		}
		y := units.Year(t)
		groups[y] = append(groups[y], i)
	}
	years := make([]int, 0, len(groups))
	for y := range groups {
		years = append(years, y)
	}
	sort.Ints(years)
	yearIdx := make([][]int, len(years))
	for i, y := range years {
		yearIdx[i] = groups[y]
	}

	o := ds.Copy()
	o.Lengths[timeDim] = len(years)
	for name, v := range o.Vars {
		ax := v.axis(timeDim)
		if ax < 0 {
			continue
		}
		if name == timeDim {
			t := sparse.ZerosDense(len(years))
			for i, y := range years {
				t.Elements[i] = units.YearEnd(y)
			}
			v.Data = t
			continue
		}
		v.Data = groupMean(v.Data, ax, yearIdx)
	}
	logrus.WithFields(logrus.Fields{
		"source": ds.Source,
		"steps":  ds.Lengths[timeDim],
		"years":  len(years),
	}).Debug("resampled to annual means")
	return o, nil
}

// groupMean averages a along axis over each group of indices, ignoring
// NaN values.
func groupMean(a *sparse.DenseArray, axis int, groups [][]int) *sparse.DenseArray {
	shape := append([]int(nil), a.Shape...)
	n := shape[axis]
	shape[axis] = len(groups)
	out := sparse.ZerosDense(shape...)
	outer, inner := blockSizes(a.Shape, axis)
	m := len(groups)
	vals := make([]float64, 0)
	for o := 0; o < outer; o++ {
		for g, idx := range groups {
			for i := 0; i < inner; i++ {
				vals = vals[:0]
				for _, src := range idx {
					v := a.Elements[(o*n+src)*inner+i]
					if !math.IsNaN(v) {
						vals = append(vals, v)
					}
				}
				mean := math.NaN()
				if len(vals) > 0 {
					mean = stat.Mean(vals, nil)
				}
				out.Elements[(o*m+g)*inner+i] = mean
			}
		}
	}
	return out
}
