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
	"bytes"
	"fmt"
	"io"
	"math"
	"os"
	"reflect"
	"sort"

	"github.com/ctessum/cdf"
	"github.com/ctessum/sparse"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// fillValue is the default NetCDF fill value for FLOAT variables.
const fillValue float32 = 9.9692099683868690e+36

// Attributes that describe how values are stored rather than what they
// mean. They are applied when a file is read and are not carried over
// into Dataset attributes.
var encodingAttributes = []string{"_FillValue", "missing_value", "scale_factor", "add_offset"}

// Open reads the NetCDF file at path. Both the classic (CDF-1 and CDF-2)
// and the NetCDF-4 (HDF5) formats are supported. Missing values are
// decoded to NaN and packed values are unpacked. The file is closed
// before Open returns.
func Open(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(ErrInput, "climex: %v", err)
	}
	defer f.Close()

	magic := make([]byte, 4)
	if _, err := io.ReadFull(f, magic); err != nil {
		return nil, errors.Wrapf(ErrInput, "climex: reading %s: %v", path, err)
	}
	var ds *Dataset
	switch {
	case bytes.HasPrefix(magic, []byte("CDF")):
		ds, err = readCDF(f)
	case bytes.Equal(magic, []byte("\x89HDF")):
		ds, err = readHDF(f)
	default:
		return nil, errors.Wrapf(ErrInput, "climex: %s is not a NetCDF file", path)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "climex: reading %s", path)
	}
	ds.Source = path
	logrus.WithFields(logrus.Fields{
		"file":      path,
		"dims":      len(ds.Dims),
		"variables": len(ds.Vars),
	}).Debug("loaded dataset")
	return ds, nil
}

// readCDF reads a NetCDF classic file.
func readCDF(f *os.File) (*Dataset, error) {
	ff, err := cdf.Open(f)
	if err != nil {
		return nil, errors.Wrap(ErrInput, err.Error())
	}
	fi, err := f.Stat()
	if err != nil {
		return nil, errors.Wrap(ErrInput, err.Error())
	}
	nrec := int(ff.Header.NumRecs(fi.Size()))

	ds := NewDataset()
	lengths := ff.Header.Lengths("")
	for i, dim := range ff.Header.Dimensions("") {
		if lengths[i] == 0 {
			lengths[i] = nrec // record dimension
		}
		ds.AddDimension(dim, lengths[i])
	}
	for _, a := range ff.Header.Attributes("") {
		ds.Attributes[a] = ff.Header.GetAttribute("", a)
	}
	for _, name := range ff.Header.Variables() {
		dims := ff.Header.Dimensions(name)
		if len(dims) == 0 {
			logrus.WithField("variable", name).Debug("skipping scalar variable")
			continue
		}
		if _, isChar := ff.Header.ZeroValue(name, 0).(string); isChar {
			logrus.WithField("variable", name).Debug("skipping character variable")
			continue
		}
		shape := append([]int(nil), ff.Header.Lengths(name)...)
		if ff.Header.IsRecordVariable(name) {
			shape[0] = nrec
		}
		raw, err := readCDFVariable(ff, name, shape)
		if err != nil {
			return nil, errors.Wrapf(ErrInput, "variable %s: %v", name, err)
		}
		attrs := make(map[string]interface{})
		for _, a := range ff.Header.Attributes(name) {
			attrs[a] = ff.Header.GetAttribute(name, a)
		}
		_, single := ff.Header.ZeroValue(name, 0).([]float32)
		data := sparse.ZerosDense(shape...)
		decode(data.Elements, raw, attrs, single)
		if err := ds.AddVariable(name, dims, attrs, data); err != nil {
			return nil, err
		}
	}
	return ds, nil
}

// readCDFVariable reads all values of a variable. Record variables
// are read one record at a time.
func readCDFVariable(ff *cdf.File, name string, shape []int) ([]float64, error) {
	if !ff.Header.IsRecordVariable(name) {
		r := ff.Reader(name, nil, nil)
		buf := r.Zero(-1)
		if _, err := r.Read(buf); err != nil {
			return nil, err
		}
		return cdfFloats(buf)
	}
	n := 1
	for _, l := range shape[1:] {
		n *= l
	}
	out := make([]float64, 0, shape[0]*n)
	if n == 0 {
		return out, nil
	}
	for rec := 0; rec < shape[0]; rec++ {
		begin, end := make([]int, len(shape)), make([]int, len(shape))
		begin[0], end[0] = rec, rec
		for i, l := range shape[1:] {
			end[i+1] = l - 1
		}
		r := ff.Reader(name, begin, end)
		buf := r.Zero(n)
		if _, err := r.Read(buf); err != nil {
			return nil, fmt.Errorf("record %d: %v", rec, err)
		}
		v, err := cdfFloats(buf)
		if err != nil {
			return nil, err
		}
		out = append(out, v...)
	}
	return out, nil
}

// cdfFloats converts a buffer read from a classic file to float64.
// BYTE values are signed.
func cdfFloats(buf interface{}) ([]float64, error) {
	switch b := buf.(type) {
	case []uint8:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(int8(v))
		}
		return o, nil
	case []int16:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []int32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []float32:
		o := make([]float64, len(b))
		for i, v := range b {
			o[i] = float64(v)
		}
		return o, nil
	case []float64:
		return b, nil
	default:
		return nil, fmt.Errorf("unsupported data type %T", buf)
	}
}

// decode copies raw into dst, replacing missing values with NaN and
// unpacking packed values, and removes the encoding attributes from attrs.
// single indicates that the stored values are 32-bit floats, in which
// case fill values are compared at that precision.
func decode(dst, raw []float64, attrs map[string]interface{}, single bool) {
	var missing []float64
	for _, a := range []string{"_FillValue", "missing_value"} {
		if v, ok := attrFloats(attrs[a]); ok {
			missing = append(missing, v...)
		}
	}
	scale, offset := 1.0, 0.0
	if v, ok := attrFloats(attrs["scale_factor"]); ok && len(v) > 0 {
		scale = v[0]
	}
	if v, ok := attrFloats(attrs["add_offset"]); ok && len(v) > 0 {
		offset = v[0]
	}
	for _, a := range encodingAttributes {
		delete(attrs, a)
	}
	for i, v := range raw {
		if isMissing(v, missing, single) {
			dst[i] = math.NaN()
			continue
		}
		dst[i] = v*scale + offset
	}
}

func isMissing(v float64, missing []float64, single bool) bool {
	for _, m := range missing {
		if v == m || (single && float32(v) == float32(m)) {
			return true
		}
	}
	return false
}

// attrFloats converts a numeric attribute value, either a scalar or
// a slice, to float64. []uint8 values are treated as signed bytes.
func attrFloats(a interface{}) ([]float64, bool) {
	if a == nil {
		return nil, false
	}
	if b, ok := a.([]uint8); ok {
		o, _ := cdfFloats(b)
		return o, true
	}
	v := reflect.ValueOf(a)
	if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
		f, ok := reflectFloat(v)
		if !ok {
			return nil, false
		}
		return []float64{f}, true
	}
	o := make([]float64, v.Len())
	for i := range o {
		f, ok := reflectFloat(v.Index(i))
		if !ok {
			return nil, false
		}
		o[i] = f
	}
	return o, true
}

func reflectFloat(v reflect.Value) (float64, bool) {
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint()), true
	case reflect.Float32, reflect.Float64:
		return v.Float(), true
	default:
		return 0, false
	}
}

// WriteNCF writes d to w in NetCDF classic format. Coordinate variables
// are written as DOUBLE and data variables as FLOAT, with NaN stored as
// the default fill value. All dimensions are fixed-length.
func (d *Dataset) WriteNCF(w *os.File) error {
	lengths := make([]int, len(d.Dims))
	for i, dim := range d.Dims {
		lengths[i] = d.Lengths[dim]
		if lengths[i] == 0 {
			return errors.Wrapf(ErrInput, "climex: writing netcdf file: dimension %s has length 0", dim)
		}
	}
	h := cdf.NewHeader(d.Dims, lengths)
	for _, a := range sortedKeys(d.Attributes) {
		if v := ncfAttribute(d.Attributes[a]); v != nil {
			h.AddAttribute("", a, v)
		}
	}

	// Sort the names so they write in the same order every time.
	names := make([]string, 0, len(d.Vars))
	for n, v := range d.Vars {
		if len(v.Dims) > 0 {
			names = append(names, n)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		v := d.Vars[name]
		coord := d.isCoord(name)
		if coord {
			h.AddVariable(name, v.Dims, []float64{0})
		} else {
			h.AddVariable(name, v.Dims, []float32{0})
		}
		for _, a := range sortedKeys(v.Attributes) {
			if isEncodingAttribute(a) {
				continue
			}
			if val := ncfAttribute(v.Attributes[a]); val != nil {
				h.AddAttribute(name, a, val)
			}
		}
		if !coord {
			h.AddAttribute(name, "_FillValue", []float32{fillValue})
		}
	}
	h.Define()

	f, err := cdf.Create(w, h) // writes the header to w
	if err != nil {
		return errors.Wrapf(err, "climex: writing netcdf header")
	}
	for _, name := range names {
		if err := writeNCF(f, name, d.Vars[name].Data, d.isCoord(name)); err != nil {
			return errors.Wrapf(err, "climex: writing variable %s to netcdf file", name)
		}
	}
	return cdf.UpdateNumRecs(w)
}

func writeNCF(f *cdf.File, name string, data *sparse.DenseArray, double bool) error {
	// Check that data matches dimensions.
	n := 1
	for _, v := range data.Shape {
		n *= v
	}
	if len(data.Elements) != n {
		return fmt.Errorf("dims are %d but array length is %d", n, len(data.Elements))
	}
	end := f.Header.Lengths(name)
	start := make([]int, len(end))
	w := f.Writer(name, start, end)
	var buf interface{}
	if double {
		buf = data.Elements
	} else {
		data32 := make([]float32, len(data.Elements))
		for i, e := range data.Elements {
			if math.IsNaN(e) {
				data32[i] = fillValue
			} else {
				data32[i] = float32(e)
			}
		}
		buf = data32
	}
	_, err := w.Write(buf)
	return err
}

func isEncodingAttribute(a string) bool {
	for _, e := range encodingAttributes {
		if a == e {
			return true
		}
	}
	return false
}

// ncfAttribute converts an attribute value to one of the types that
// can be stored in a classic file, or returns nil if it can't be.
func ncfAttribute(a interface{}) interface{} {
	switch v := a.(type) {
	case string, []uint8, []int16, []int32, []float32, []float64:
		return v
	case []string:
		var b bytes.Buffer
		for i, s := range v {
			if i > 0 {
				b.WriteString(",")
			}
			b.WriteString(s)
		}
		return b.String()
	}
	if f, ok := attrFloats(a); ok {
		return f
	}
	return nil
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
