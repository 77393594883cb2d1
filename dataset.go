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
	"fmt"
	"sort"
	"strings"

	"github.com/ctessum/sparse"
	"github.com/pkg/errors"
)

// Variable holds the data and metadata for one variable in a Dataset.
type Variable struct {
	// Dims are the names of the dimensions of the variable, outermost first.
	Dims []string

	// Attributes holds the variable attributes. Values are of type
	// string, []uint8, []int16, []int32, []float32 or []float64.
	Attributes map[string]interface{}

	// Data holds the variable values in row-major order. Missing values
	// are NaN.
	Data *sparse.DenseArray
}

// Attribute returns the string attribute with the given name,
// or "" if it doesn't exist or isn't a string.
func (v *Variable) Attribute(name string) string {
	s, _ := v.Attributes[name].(string)
	return s
}

// axis returns the position of dim in the variable's dimensions, or -1.
func (v *Variable) axis(dim string) int {
	for i, d := range v.Dims {
		if d == dim {
			return i
		}
	}
	return -1
}

// Dataset is a gridded dataset: a set of variables indexed by shared,
// named dimensions. A variable with a single dimension of the same name
// is the coordinate variable for that dimension.
type Dataset struct {
	// Dims holds the dimension names in the order they were defined.
	Dims []string

	// Lengths holds the length of each dimension.
	Lengths map[string]int

	// Vars holds the variables, including coordinate variables.
	Vars map[string]*Variable

	// Attributes holds the global attributes.
	Attributes map[string]interface{}

	// Source names the file or files the dataset was read from.
	Source string
}

// NewDataset returns an empty dataset.
func NewDataset() *Dataset {
	return &Dataset{
		Lengths:    make(map[string]int),
		Vars:       make(map[string]*Variable),
		Attributes: make(map[string]interface{}),
	}
}

// AddDimension adds a dimension of length n to d, or changes the length
// of an existing dimension.
func (d *Dataset) AddDimension(name string, n int) {
	if _, ok := d.Lengths[name]; !ok {
		d.Dims = append(d.Dims, name)
	}
	d.Lengths[name] = n
}

// AddVariable adds a variable to d. The shape of data must match the
// lengths of the named dimensions, which must already exist.
func (d *Dataset) AddVariable(name string, dims []string, attrs map[string]interface{}, data *sparse.DenseArray) error {
	if len(dims) != len(data.Shape) {
		return errors.Wrapf(ErrInput, "climex: variable %s has %d dimensions but data has %d", name, len(dims), len(data.Shape))
	}
	for i, dim := range dims {
		n, ok := d.Lengths[dim]
		if !ok {
			return errors.Wrapf(ErrInput, "climex: variable %s: dimension %s is not defined", name, dim)
		}
		if n != data.Shape[i] {
			return errors.Wrapf(ErrInput, "climex: variable %s: dimension %s has length %d but data has length %d",
				name, dim, n, data.Shape[i])
		}
	}
	if attrs == nil {
		attrs = make(map[string]interface{})
	}
	d.Vars[name] = &Variable{Dims: dims, Attributes: attrs, Data: data}
	return nil
}

// Coord returns the values of the coordinate variable for dimension dim,
// or nil if there isn't one.
func (d *Dataset) Coord(dim string) []float64 {
	v, ok := d.Vars[dim]
	if !ok || len(v.Dims) != 1 || v.Dims[0] != dim {
		return nil
	}
	return v.Data.Elements
}

// isCoord returns whether the named variable is a coordinate variable.
func (d *Dataset) isCoord(name string) bool {
	v, ok := d.Vars[name]
	return ok && len(v.Dims) == 1 && v.Dims[0] == name
}

// DataVars returns the sorted names of the variables that are not
// coordinate variables.
func (d *Dataset) DataVars() []string {
	var names []string
	for name := range d.Vars {
		if !d.isCoord(name) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Copy returns a deep copy of d.
func (d *Dataset) Copy() *Dataset {
	o := NewDataset()
	o.Source = d.Source
	for _, dim := range d.Dims {
		o.AddDimension(dim, d.Lengths[dim])
	}
	for k, v := range d.Attributes {
		o.Attributes[k] = v
	}
	for name, v := range d.Vars {
		o.Vars[name] = &Variable{
			Dims:       append([]string(nil), v.Dims...),
			Attributes: copyAttributes(v.Attributes),
			Data:       copyArray(v.Data),
		}
	}
	return o
}

// Isel returns a new dataset where dimension dim only contains the
// elements at the given indices, in the given order. All variables
// indexed by dim, including its coordinate variable, are gathered with
// the same indices.
func (d *Dataset) Isel(dim string, idx []int) (*Dataset, error) {
	n, ok := d.Lengths[dim]
	if !ok {
		return nil, errors.Wrapf(ErrInput, "climex: %s: no dimension %s", d.Source, dim)
	}
	for _, i := range idx {
		if i < 0 || i >= n {
			return nil, errors.Wrapf(ErrInvalidRange, "climex: index %d out of range for dimension %s of length %d", i, dim, n)
		}
	}
	o := d.Copy()
	o.Lengths[dim] = len(idx)
	for _, v := range o.Vars {
		if ax := v.axis(dim); ax >= 0 {
			v.Data = take(v.Data, ax, idx)
		}
	}
	return o, nil
}

// findAxis returns the name of the dimension whose coordinate variable
// matches one of the given names (case-insensitively) or has the given
// standard_name attribute.
func (d *Dataset) findAxis(names []string, standardName string) (string, error) {
	for _, dim := range d.Dims {
		if d.Coord(dim) == nil {
			continue
		}
		for _, n := range names {
			if strings.EqualFold(dim, n) {
				return dim, nil
			}
		}
		if d.Vars[dim].Attribute("standard_name") == standardName {
			return dim, nil
		}
	}
	return "", errors.Wrapf(ErrInput, "climex: %s: no %s coordinate (looked for %s)",
		d.Source, standardName, strings.Join(names, ", "))
}

// LatLonDims returns the names of the latitude and longitude dimensions.
func (d *Dataset) LatLonDims() (lat, lon string, err error) {
	lat, err = d.findAxis([]string{"lat", "latitude"}, "latitude")
	if err != nil {
		return "", "", err
	}
	lon, err = d.findAxis([]string{"lon", "longitude"}, "longitude")
	if err != nil {
		return "", "", err
	}
	return lat, lon, nil
}

// String returns a short summary of the dataset dimensions and variables.
func (d *Dataset) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "dataset %s\n  dimensions:", d.Source)
	for _, dim := range d.Dims {
		fmt.Fprintf(&b, " %s=%d", dim, d.Lengths[dim])
	}
	b.WriteString("\n  variables:")
	for _, name := range d.DataVars() {
		fmt.Fprintf(&b, " %s(%s)", name, strings.Join(d.Vars[name].Dims, ","))
	}
	return b.String()
}

func copyAttributes(a map[string]interface{}) map[string]interface{} {
	o := make(map[string]interface{}, len(a))
	for k, v := range a {
		o[k] = v
	}
	return o
}

func copyArray(a *sparse.DenseArray) *sparse.DenseArray {
	o := sparse.ZerosDense(append([]int(nil), a.Shape...)...)
	copy(o.Elements, a.Elements)
	return o
}

// take gathers the elements of a at the given indices along axis into
// a new array.
func take(a *sparse.DenseArray, axis int, idx []int) *sparse.DenseArray {
	shape := append([]int(nil), a.Shape...)
	n := shape[axis]
	shape[axis] = len(idx)
	out := sparse.ZerosDense(shape...)
	outer, inner := blockSizes(a.Shape, axis)
	m := len(idx)
	for o := 0; o < outer; o++ {
		for j, src := range idx {
			dst := (o*m + j) * inner
			s := (o*n + src) * inner
			copy(out.Elements[dst:dst+inner], a.Elements[s:s+inner])
		}
	}
	return out
}

// concat joins arrays along axis. The arrays must have the same shape
// along every other axis.
func concat(axis int, arrays ...*sparse.DenseArray) *sparse.DenseArray {
	shape := append([]int(nil), arrays[0].Shape...)
	shape[axis] = 0
	for _, a := range arrays {
		shape[axis] += a.Shape[axis]
	}
	out := sparse.ZerosDense(shape...)
	outer, inner := blockSizes(shape, axis)
	m := shape[axis]
	offset := 0
	for _, a := range arrays {
		n := a.Shape[axis]
		for o := 0; o < outer; o++ {
			dst := (o*m + offset) * inner
			s := o * n * inner
			copy(out.Elements[dst:dst+n*inner], a.Elements[s:s+n*inner])
		}
		offset += n
	}
	return out
}

// blockSizes returns the number of blocks before axis and the number
// of elements after it.
func blockSizes(shape []int, axis int) (outer, inner int) {
	outer, inner = 1, 1
	for _, s := range shape[:axis] {
		outer *= s
	}
	for _, s := range shape[axis+1:] {
		inner *= s
	}
	return outer, inner
}
