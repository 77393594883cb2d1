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
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/ctessum/cdf"
	"github.com/kr/pretty"
	"github.com/pkg/errors"
)

func TestWriteNCFRoundTrip(t *testing.T) {
	ds := newTestGrid(t, []float64{50, 60}, []float64{-10, 0, 10}, []float64{0, 1})
	ds.Vars["tas"].Data.Elements[1] = math.NaN()
	ds.Vars["tas"].Attributes["scale_factor"] = []float32{2}
	ds.Attributes["title"] = "test data"
	ds.Attributes["version"] = 3

	path := filepath.Join(t.TempDir(), "out.nc")
	writeTestFile(t, path, ds)

	o, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if o.Source != path {
		t.Errorf("source: got %s, want %s", o.Source, path)
	}
	if !reflect.DeepEqual(o.Dims, ds.Dims) || !reflect.DeepEqual(o.Lengths, ds.Lengths) {
		t.Errorf("dimensions: got %v %v, want %v %v", o.Dims, o.Lengths, ds.Dims, ds.Lengths)
	}
	for _, c := range []string{"time", "lat", "lon"} {
		if !reflect.DeepEqual(o.Coord(c), ds.Coord(c)) {
			t.Errorf("%s: got %v, want %v", c, o.Coord(c), ds.Coord(c))
		}
	}
	if !sameFloats(o.Vars["tas"].Data.Elements, ds.Vars["tas"].Data.Elements) {
		t.Errorf("tas: got %v, want %v", o.Vars["tas"].Data.Elements, ds.Vars["tas"].Data.Elements)
	}
	wantAttrs := map[string]interface{}{"units": "K"}
	if diff := pretty.Diff(o.Vars["tas"].Attributes, wantAttrs); len(diff) > 0 {
		t.Errorf("tas attributes: %v", diff)
	}
	wantGlobal := map[string]interface{}{"title": "test data", "version": []float64{3}}
	if diff := pretty.Diff(o.Attributes, wantGlobal); len(diff) > 0 {
		t.Errorf("global attributes: %v", diff)
	}
}

func TestOpenRecordDimension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.nc")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	h := cdf.NewHeader([]string{"time", "lat", "lon"}, []int{0, 2, 2})
	h.AddVariable("time", []string{"time"}, []float64{0})
	h.AddAttribute("time", "units", "hours since 2000-01-01 00:00:00")
	h.AddVariable("lat", []string{"lat"}, []float64{0})
	h.AddVariable("lon", []string{"lon"}, []float64{0})
	h.AddVariable("pr", []string{"time", "lat", "lon"}, []int16{0})
	h.AddAttribute("pr", "scale_factor", []float32{0.5})
	h.AddAttribute("pr", "add_offset", []float32{10})
	h.AddAttribute("pr", "_FillValue", []int16{-999})
	h.Define()
	ff, err := cdf.Create(f, h)
	if err != nil {
		t.Fatal(err)
	}
	write := func(name string, begin, end []int, data interface{}) {
		t.Helper()
		if _, err := ff.Writer(name, begin, end).Write(data); err != nil {
			t.Fatalf("writing %s: %v", name, err)
		}
	}
	write("lat", []int{0}, []int{2}, []float64{50, 60})
	write("lon", []int{0}, []int{2}, []float64{0, 1})
	for rec, vals := range [][]int16{{0, 2, 4, -999}, {6, 8, 10, 12}, {-999, -999, 2, 2}} {
		write("time", []int{rec}, []int{rec + 1}, []float64{float64(rec * 6)})
		write("pr", []int{rec, 0, 0}, []int{rec + 1, 0, 0}, vals)
	}
	if err := cdf.UpdateNumRecs(f); err != nil {
		t.Fatal(err)
	}
	f.Close()

	ds, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Lengths["time"] != 3 {
		t.Fatalf("time length: got %d, want 3", ds.Lengths["time"])
	}
	if want := []float64{0, 6, 12}; !reflect.DeepEqual(ds.Coord("time"), want) {
		t.Errorf("time: got %v, want %v", ds.Coord("time"), want)
	}
	nan := math.NaN()
	want := []float64{10, 11, 12, nan, 13, 14, 15, 16, nan, nan, 11, 11}
	if !sameFloats(ds.Vars["pr"].Data.Elements, want) {
		t.Errorf("pr: got %v, want %v", ds.Vars["pr"].Data.Elements, want)
	}
	if _, ok := ds.Vars["pr"].Attributes["scale_factor"]; ok {
		t.Error("packing attributes should not be kept")
	}
}

func TestOpenErrors(t *testing.T) {
	dir := t.TempDir()
	text := filepath.Join(dir, "text.nc")
	if err := os.WriteFile(text, []byte("not a netcdf file"), 0644); err != nil {
		t.Fatal(err)
	}
	short := filepath.Join(dir, "short.nc")
	if err := os.WriteFile(short, []byte("CD"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, path := range []string{text, short, filepath.Join(dir, "missing.nc")} {
		if _, err := Open(path); errors.Cause(err) != ErrInput {
			t.Errorf("%s: got %v, want %v", filepath.Base(path), err, ErrInput)
		}
	}
}

func TestDecode(t *testing.T) {
	attrs := map[string]interface{}{
		"missing_value": float64(-1),
		"_FillValue":    []float32{9.96921e+36},
		"units":         "mm",
	}
	raw := []float64{1, -1, float64(float32(9.96921e+36)), 2}
	dst := make([]float64, len(raw))
	decode(dst, raw, attrs, true)
	if want := []float64{1, math.NaN(), math.NaN(), 2}; !sameFloats(dst, want) {
		t.Errorf("got %v, want %v", dst, want)
	}
	if want := map[string]interface{}{"units": "mm"}; !reflect.DeepEqual(attrs, want) {
		t.Errorf("attributes: got %v, want %v", attrs, want)
	}
}
