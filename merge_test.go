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
	"reflect"
	"strings"
	"testing"

	"github.com/ctessum/sparse"
	"github.com/pkg/errors"
)

func TestMerge(t *testing.T) {
	lats, lons := []float64{0, 10}, []float64{0, 10, 20}

	t.Run("time", func(t *testing.T) {
		late := newTestGrid(t, lats, lons, []float64{2, 3})
		late.Source = "late"
		early := newTestGrid(t, lats, lons, []float64{0, 1})
		early.Source = "early"
		o, err := Merge(late, early)
		if err != nil {
			t.Fatal(err)
		}
		if want := []float64{0, 1, 2, 3}; !reflect.DeepEqual(o.Coord("time"), want) {
			t.Errorf("time: got %v, want %v", o.Coord("time"), want)
		}
		if o.Lengths["time"] != 4 {
			t.Errorf("time length: got %d", o.Lengths["time"])
		}
		want := newTestGrid(t, lats, lons, []float64{0, 1, 2, 3})
		if !reflect.DeepEqual(o.Vars["tas"].Data.Elements, want.Vars["tas"].Data.Elements) {
			t.Errorf("tas: got %v, want %v", o.Vars["tas"].Data.Elements, want.Vars["tas"].Data.Elements)
		}
		if o.Source != "late,early" {
			t.Errorf("source: got %s", o.Source)
		}
	})

	t.Run("single", func(t *testing.T) {
		ds := newTestGrid(t, lats, lons, nil)
		o, err := Merge(ds)
		if err != nil {
			t.Fatal(err)
		}
		o.Vars["tas"].Data.Elements[0] = -1
		if ds.Vars["tas"].Data.Elements[0] == -1 {
			t.Error("merged dataset shares memory with its source")
		}
	})

	t.Run("variables", func(t *testing.T) {
		a := newTestGrid(t, lats, lons, nil)
		b := newTestGrid(t, lats, lons, nil)
		b.Vars["pr"] = b.Vars["tas"]
		delete(b.Vars, "tas")
		o, err := Merge(a, b)
		if err != nil {
			t.Fatal(err)
		}
		if want := []string{"pr", "tas"}; !reflect.DeepEqual(o.DataVars(), want) {
			t.Errorf("got %v, want %v", o.DataVars(), want)
		}
	})

	t.Run("different grids", func(t *testing.T) {
		a := newTestGrid(t, lats, lons, nil)
		b := newTestGrid(t, lats, lons, nil)
		b.Vars["pr"] = b.Vars["tas"]
		delete(b.Vars, "tas")
		b.Vars["lat"].Data = &sparse.DenseArray{Shape: []int{2}, Elements: []float64{0, 5}}
		_, err := Merge(a, b)
		if errors.Cause(err) != ErrMerge {
			t.Errorf("got %v, want %v", err, ErrMerge)
		}
	})

	t.Run("two differing coordinates", func(t *testing.T) {
		a := newTestGrid(t, lats, lons, []float64{0})
		b := newTestGrid(t, []float64{20, 30}, lons, []float64{1})
		_, err := Merge(a, b)
		if errors.Cause(err) != ErrMerge {
			t.Errorf("got %v, want %v", err, ErrMerge)
		}
	})

	t.Run("overlapping", func(t *testing.T) {
		a := newTestGrid(t, lats, lons, []float64{0, 2})
		b := newTestGrid(t, lats, lons, []float64{1, 3})
		_, err := Merge(a, b)
		if errors.Cause(err) != ErrMerge {
			t.Errorf("got %v, want %v", err, ErrMerge)
		}
		if err != nil && !strings.Contains(err.Error(), "time") {
			t.Errorf("error should name the coordinate: %v", err)
		}
	})

	t.Run("duplicate", func(t *testing.T) {
		a := newTestGrid(t, lats, lons, []float64{0})
		_, err := Merge(a, a.Copy())
		if errors.Cause(err) != ErrMerge {
			t.Errorf("got %v, want %v", err, ErrMerge)
		}
	})

	t.Run("none", func(t *testing.T) {
		if _, err := Merge(); errors.Cause(err) != ErrInput {
			t.Errorf("got %v, want %v", err, ErrInput)
		}
	})
}
