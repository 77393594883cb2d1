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
	"sort"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

// Merge combines datasets by their coordinates. Datasets holding the same
// set of data variables must share every coordinate except at most one,
// along which they are concatenated in coordinate order. The resulting
// groups are then combined into one dataset, which requires that they
// share every coordinate they have in common. Any mismatch is ErrMerge.
func Merge(datasets ...*Dataset) (*Dataset, error) {
	if len(datasets) == 0 {
		return nil, errors.Wrap(ErrInput, "climex: no datasets to merge")
	}
	var keys []string
	groups := make(map[string][]*Dataset)
	for _, ds := range datasets {
		key := strings.Join(ds.DataVars(), ",")
		if _, ok := groups[key]; !ok {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], ds)
	}
	var o *Dataset
	for _, key := range keys {
		g, err := concatGroup(groups[key])
		if err != nil {
			return nil, err
		}
		if o == nil {
			o = g
			continue
		}
		if err := o.union(g); err != nil {
			return nil, err
		}
	}
	sources := make([]string, len(datasets))
	for i, ds := range datasets {
		sources[i] = ds.Source
	}
	o.Source = strings.Join(sources, ",")
	logrus.WithFields(logrus.Fields{
		"files":  len(datasets),
		"groups": len(keys),
	}).Debug("merged datasets")
	return o, nil
}

// concatGroup concatenates datasets that hold the same data variables
// along the one coordinate in which they differ.
func concatGroup(group []*Dataset) (*Dataset, error) {
	first := group[0]
	if len(group) == 1 {
		return first.Copy(), nil
	}
	var concatDim string
	for _, ds := range group[1:] {
		if len(ds.Dims) != len(first.Dims) {
			return nil, errors.Wrapf(ErrMerge, "climex: %s has dimensions %v but %s has %v",
				ds.Source, ds.Dims, first.Source, first.Dims)
		}
		for _, dim := range first.Dims {
			if _, ok := ds.Lengths[dim]; !ok {
				return nil, errors.Wrapf(ErrMerge, "climex: %s has no dimension %s", ds.Source, dim)
			}
			if sameCoord(first, ds, dim) {
				continue
			}
			if concatDim != "" && concatDim != dim {
				return nil, errors.Wrapf(ErrMerge, "climex: %s differs from %s in both %s and %s",
					ds.Source, first.Source, concatDim, dim)
			}
			concatDim = dim
		}
	}
	if concatDim == "" {
		return nil, errors.Wrapf(ErrMerge, "climex: %s and %s have identical coordinates",
			first.Source, group[1].Source)
	}
	for _, ds := range group {
		if len(ds.Coord(concatDim)) == 0 {
			return nil, errors.Wrapf(ErrMerge, "climex: %s: dimension %s has no coordinate values to order by",
				ds.Source, concatDim)
		}
	}

	sorted := append([]*Dataset(nil), group...)
	descending := isDecreasing(first.Coord(concatDim))
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].Coord(concatDim)[0], sorted[j].Coord(concatDim)[0]
		if descending {
			return a > b
		}
		return a < b
	})

	o := sorted[0].Copy()
	n := 0
	for _, ds := range sorted {
		n += ds.Lengths[concatDim]
	}
	o.Lengths[concatDim] = n
	for name, v := range o.Vars {
		ax := v.axis(concatDim)
		if ax < 0 {
			continue
		}
		arrays := make([]*sparse.DenseArray, len(sorted))
		for i, ds := range sorted {
			dv, ok := ds.Vars[name]
			if !ok || dv.axis(concatDim) != ax || len(dv.Dims) != len(v.Dims) {
				return nil, errors.Wrapf(ErrMerge, "climex: %s: variable %s is not indexed like in %s",
					ds.Source, name, sorted[0].Source)
			}
			arrays[i] = dv.Data
		}
		v.Data = concat(ax, arrays...)
	}
	c := o.Coord(concatDim)
	if !isIncreasing(c) && !isDecreasing(c) {
		return nil, errors.Wrapf(ErrMerge, "climex: %s: concatenated coordinate %s is not strictly monotonic",
			o.Source, concatDim)
	}
	return o, nil
}

// union adds the variables of g to d. Dimensions present in both must
// have the same coordinates, and data variable names must not clash.
func (d *Dataset) union(g *Dataset) error {
	for _, dim := range g.Dims {
		if _, ok := d.Lengths[dim]; !ok {
			d.AddDimension(dim, g.Lengths[dim])
			continue
		}
		if !sameCoord(d, g, dim) {
			return errors.Wrapf(ErrMerge, "climex: %s and %s have different %s coordinates",
				d.Source, g.Source, dim)
		}
	}
	for name, v := range g.Vars {
		if _, ok := d.Vars[name]; ok {
			if g.isCoord(name) {
				continue
			}
			return errors.Wrapf(ErrMerge, "climex: variable %s is in both %s and %s", name, d.Source, g.Source)
		}
		d.Vars[name] = v
	}
	for k, v := range g.Attributes {
		if _, ok := d.Attributes[k]; !ok {
			d.Attributes[k] = v
		}
	}
	return nil
}

// sameCoord returns whether dimension dim has the same length and
// coordinate values in a and b.
func sameCoord(a, b *Dataset, dim string) bool {
	if a.Lengths[dim] != b.Lengths[dim] {
		return false
	}
	return floats.EqualApprox(a.Coord(dim), b.Coord(dim), 1e-9)
}

func isIncreasing(x []float64) bool {
	for i := 1; i < len(x); i++ {
		if !(x[i] > x[i-1]) {
			return false
		}
	}
	return true
}

func isDecreasing(x []float64) bool {
	if len(x) < 2 {
		return false
	}
	for i := 1; i < len(x); i++ {
		if !(x[i] < x[i-1]) {
			return false
		}
	}
	return true
}
