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
	"os"
	"reflect"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/ctessum/sparse"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// readHDF reads a NetCDF-4 (HDF5) file. Only the root group is read.
func readHDF(f *os.File) (*Dataset, error) {
	if _, err := f.Seek(0, 0); err != nil {
		return nil, errors.Wrap(ErrInput, err.Error())
	}
	g, err := netcdf.New(f)
	if err != nil {
		return nil, errors.Wrap(ErrInput, err.Error())
	}
	defer g.Close()

	ds := NewDataset()
	for _, dim := range g.ListDimensions() {
		if n, ok := g.GetDimension(dim); ok {
			ds.AddDimension(dim, int(n))
		}
	}
	ds.Attributes = hdfAttributes(g.Attributes())

	for _, name := range g.ListVariables() {
		vg, err := g.GetVarGetter(name)
		if err != nil {
			return nil, errors.Wrapf(ErrInput, "variable %s: %v", name, err)
		}
		dims := vg.Dimensions()
		if len(dims) == 0 || vg.GoType() == "string" {
			logrus.WithField("variable", name).Debug("skipping scalar or string variable")
			continue
		}
		shape64 := vg.Shape()
		shape := make([]int, len(shape64))
		for i, s := range shape64 {
			shape[i] = int(s)
			if _, ok := ds.Lengths[dims[i]]; !ok {
				ds.AddDimension(dims[i], shape[i])
			}
		}
		values, err := vg.Values()
		if err != nil {
			return nil, errors.Wrapf(ErrInput, "variable %s: %v", name, err)
		}
		raw, err := flatten(values, nil)
		if err != nil {
			return nil, errors.Wrapf(ErrInput, "variable %s: %v", name, err)
		}
		data := sparse.ZerosDense(shape...)
		if len(raw) != len(data.Elements) {
			return nil, errors.Wrapf(ErrInput, "variable %s: has %d values but shape %v", name, len(raw), shape)
		}
		attrs := hdfAttributes(vg.Attributes())
		decode(data.Elements, raw, attrs, vg.GoType() == "float32")
		if err := ds.AddVariable(name, dims, attrs, data); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

func hdfAttributes(m api.AttributeMap) map[string]interface{} {
	o := make(map[string]interface{})
	if m == nil {
		return o
	}
	for _, k := range m.Keys() {
		if v, ok := m.Get(k); ok {
			o[k] = v
		}
	}
	return o
}

// flatten appends the numeric values held in v, which may be a scalar or
// a nested slice, to dst in row-major order.
func flatten(v interface{}, dst []float64) ([]float64, error) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		for i := 0; i < rv.Len(); i++ {
			var err error
			dst, err = flatten(rv.Index(i).Interface(), dst)
			if err != nil {
				return nil, err
			}
		}
		return dst, nil
	}
	f, ok := reflectFloat(rv)
	if !ok {
		return nil, fmt.Errorf("unsupported data type %T", v)
	}
	return append(dst, f), nil
}
