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
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// rollIndices returns the gather order that circularly shifts an axis of
// length n to the right by shift positions: element i of the result
// is the source index that ends up at position i.
func rollIndices(n, shift int) []int {
	idx := make([]int, n)
	if n == 0 {
		return idx
	}
	shift %= n
	for i := range idx {
		idx[i] = (i - shift + n) % n
	}
	return idx
}

// RollLongitudes converts longitudes stored in [0, 360) to [-180, 180).
// The axis is rotated by len(lons)/2 positions and 360 is subtracted from
// the first len(lons)/2 values of the rotated axis. For an odd number of
// longitudes the split is uneven; the eastern half is the longer one.
// lons is not modified.
func RollLongitudes(lons []float64) []float64 {
	n := len(lons)
	half := n / 2
	out := make([]float64, n)
	for i, src := range rollIndices(n, half) {
		out[i] = lons[src]
	}
	for i := 0; i < half; i++ {
		out[i] -= 360
	}
	return out
}

// NormalizeLongitude returns a copy of ds with its longitude axis
// expressed in [-180, 180). Every variable indexed by longitude is
// rotated with the same shift as the coordinate. The axis is taken to be
// in [0, 360) when it has no negative values and reaches 180; other
// datasets are returned unchanged.
func NormalizeLongitude(ds *Dataset) (*Dataset, error) {
	_, lonDim, err := ds.LatLonDims()
	if err != nil {
		return nil, err
	}
	lons := ds.Coord(lonDim)
	if len(lons) == 0 || floats.Min(lons) < 0 || floats.Max(lons) < 180 {
		return ds, nil
	}
	n := len(lons)
	o, err := ds.Isel(lonDim, rollIndices(n, n/2))
	if err != nil {
		return nil, err
	}
	o.Vars[lonDim].Data.Elements = RollLongitudes(lons)
	logrus.WithFields(logrus.Fields{
		"dim":   lonDim,
		"n":     n,
		"shift": n / 2,
	}).Debug("rolled longitude axis to [-180, 180)")
	return o, nil
}
