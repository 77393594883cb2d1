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
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BoundingBox is a rectangular geographic region in degrees. Longitudes
// are in the range [-180, 180].
type BoundingBox struct {
	MaxLat, MinLat, MaxLon, MinLon float64
}

var (
	// GlobalBox covers the whole globe.
	GlobalBox = BoundingBox{MaxLat: 90, MinLat: -90, MaxLon: 180, MinLon: -180}

	// UKBox covers the United Kingdom.
	UKBox = BoundingBox{MaxLat: 60, MinLat: 48, MaxLon: 3, MinLon: -12}
)

// Validate checks that the box is not inverted and lies within
// the latitude range [-90, 90] and the longitude range [-180, 180].
func (b BoundingBox) Validate() error {
	if b.MaxLat < b.MinLat {
		return errors.Wrapf(ErrInvalidRange, "climex: bounding box max_lat (%g) is less than min_lat (%g)", b.MaxLat, b.MinLat)
	}
	if b.MaxLon < b.MinLon {
		return errors.Wrapf(ErrInvalidRange, "climex: bounding box max_lon (%g) is less than min_lon (%g)", b.MaxLon, b.MinLon)
	}
	if b.MinLat < -90 || b.MaxLat > 90 {
		return errors.Wrapf(ErrInvalidRange, "climex: bounding box latitudes [%g, %g] are outside [-90, 90]", b.MinLat, b.MaxLat)
	}
	if b.MinLon < -180 || b.MaxLon > 180 {
		return errors.Wrapf(ErrInvalidRange, "climex: bounding box longitudes [%g, %g] are outside [-180, 180]", b.MinLon, b.MaxLon)
	}
	return nil
}

func (b BoundingBox) String() string {
	return fmt.Sprintf("N=%g S=%g E=%g W=%g", b.MaxLat, b.MinLat, b.MaxLon, b.MinLon)
}

// ExtractArea reads and merges the given gridded dataset files and returns
// the part of the merged dataset that falls within b. Longitudes stored
// in [0, 360) are converted to [-180, 180) before selection.
// Every file is closed before ExtractArea returns.
func ExtractArea(ctx context.Context, files []string, b BoundingBox) (*Dataset, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.Wrap(ErrInput, "climex: no input files")
	}
	datasets := make([]*Dataset, len(files))
	for i, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ds, err := Open(f)
		if err != nil {
			return nil, err
		}
		datasets[i] = ds
	}
	merged, err := Merge(datasets...)
	if err != nil {
		return nil, err
	}
	return SelectRegion(merged, b)
}

// SelectRegion returns the part of ds within b, after converting its
// longitudes to [-180, 180). The result does not share memory with ds.
func SelectRegion(ds *Dataset, b BoundingBox) (*Dataset, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	ds, err := NormalizeLongitude(ds)
	if err != nil {
		return nil, err
	}
	latDim, lonDim, err := ds.LatLonDims()
	if err != nil {
		return nil, err
	}
	out := ds
	for _, s := range []struct {
		dim    string
		lo, hi float64
	}{
		{dim: latDim, lo: b.MinLat, hi: b.MaxLat},
		{dim: lonDim, lo: b.MinLon, hi: b.MaxLon},
	} {
		start, end, err := selectRange(out.Coord(s.dim), s.lo, s.hi)
		if err != nil {
			return nil, errors.Wrapf(err, "climex: %s: %s", ds.Source, s.dim)
		}
		if start == end {
			return nil, errors.Wrapf(ErrEmptySelection, "climex: %s: no %s values in [%g, %g]",
				ds.Source, s.dim, s.lo, s.hi)
		}
		idx := make([]int, end-start)
		for i := range idx {
			idx[i] = start + i
		}
		out, err = out.Isel(s.dim, idx)
		if err != nil {
			return nil, err
		}
	}
	logrus.WithFields(logrus.Fields{
		"source": ds.Source,
		"bbox":   b.String(),
		latDim:   out.Lengths[latDim],
		lonDim:   out.Lengths[lonDim],
	}).Debug("selected region")
	return out, nil
}

// selectRange returns the half-open index range [start, end) of the
// values of a monotonic coordinate that lie in the closed range [lo, hi].
// Coordinates may be stored in increasing or decreasing order; the
// returned range follows the stored order.
func selectRange(coord []float64, lo, hi float64) (start, end int, err error) {
	n := len(coord)
	increasing := n < 2 || isIncreasing(coord)
	if !increasing && !isDecreasing(coord) {
		return 0, 0, errors.Wrap(ErrInput, "coordinate is not monotonic")
	}
	if increasing {
		start = sort.Search(n, func(i int) bool { return coord[i] >= lo })
		end = sort.Search(n, func(i int) bool { return coord[i] > hi })
	} else {
		start = sort.Search(n, func(i int) bool { return coord[i] <= hi })
		end = sort.Search(n, func(i int) bool { return coord[i] < lo })
	}
	if end < start {
		end = start
	}
	return start, end, nil
}

// FindFiles returns the sorted list of regular files in dir whose names
// match the glob pattern.
func FindFiles(dir, pattern string) ([]string, error) {
	glob := filepath.Join(dir, pattern)
	matches, err := filepath.Glob(glob)
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidArgument, "climex: bad file pattern %q: %v", glob, err)
	}
	var files []string
	for _, m := range matches {
		fi, err := os.Stat(m)
		if err != nil {
			return nil, errors.Wrapf(ErrInput, "climex: %v", err)
		}
		if fi.Mode().IsRegular() {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return nil, errors.Wrapf(ErrInput, "climex: no files match %s", glob)
	}
	sort.Strings(files)
	return files, nil
}
