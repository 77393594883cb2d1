package climex

import (
	"reflect"
	"testing"
)

func TestRollIndices(t *testing.T) {
	for _, test := range []struct {
		n, shift int
		want     []int
	}{
		{n: 4, shift: 2, want: []int{2, 3, 0, 1}},
		{n: 5, shift: 2, want: []int{3, 4, 0, 1, 2}},
		{n: 3, shift: 0, want: []int{0, 1, 2}},
		{n: 3, shift: 4, want: []int{2, 0, 1}},
		{n: 0, shift: 0, want: []int{}},
	} {
		got := rollIndices(test.n, test.shift)
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("rollIndices(%d, %d) = %v; want %v", test.n, test.shift, got, test.want)
		}
	}
}

func TestRollLongitudes(t *testing.T) {
	t.Run("quarter", func(t *testing.T) {
		lons := []float64{0, 90, 180, 270}
		got := RollLongitudes(lons)
		if want := []float64{-180, -90, 0, 90}; !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
		if want := []float64{0, 90, 180, 270}; !reflect.DeepEqual(lons, want) {
			t.Errorf("input modified: %v", lons)
		}
	})
	t.Run("one degree", func(t *testing.T) {
		got := RollLongitudes(seq(0, 359, 1))
		if want := seq(-180, 179, 1); !reflect.DeepEqual(got, want) {
			t.Errorf("got %v..%v (%d), want -180..179", got[0], got[len(got)-1], len(got))
		}
	})
	t.Run("odd", func(t *testing.T) {
		// The split is uneven for an odd number of longitudes.
		got := RollLongitudes([]float64{0, 72, 144, 216, 288})
		if want := []float64{-144, -72, 0, 72, 144}; !reflect.DeepEqual(got, want) {
			t.Errorf("got %v, want %v", got, want)
		}
	})
}

func TestNormalizeLongitude(t *testing.T) {
	ds := newTestGrid(t, []float64{0}, []float64{0, 90, 180, 270}, nil)
	o, err := NormalizeLongitude(ds)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{-180, -90, 0, 90}; !reflect.DeepEqual(o.Coord("lon"), want) {
		t.Errorf("lon: got %v, want %v", o.Coord("lon"), want)
	}
	if want := []float64{180, 270, 0, 90}; !reflect.DeepEqual(o.Vars["tas"].Data.Elements, want) {
		t.Errorf("tas: got %v, want %v", o.Vars["tas"].Data.Elements, want)
	}
	if want := []float64{0, 90, 180, 270}; !reflect.DeepEqual(ds.Coord("lon"), want) {
		t.Errorf("source modified: %v", ds.Coord("lon"))
	}

	o2, err := NormalizeLongitude(o)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(o2.Coord("lon"), o.Coord("lon")) ||
		!reflect.DeepEqual(o2.Vars["tas"].Data.Elements, o.Vars["tas"].Data.Elements) {
		t.Errorf("not idempotent: got %v", o2.Coord("lon"))
	}
}

func TestNormalizeLongitudeEdges(t *testing.T) {
	for _, test := range []struct {
		name string
		lons []float64
		want []float64
	}{
		{name: "ends at 180", lons: []float64{0, 90, 180}, want: []float64{-180, 0, 90}},
		{name: "two points", lons: []float64{0, 180}, want: []float64{-180, 0}},
		{name: "one point", lons: []float64{200}, want: []float64{200}},
		{name: "regional", lons: []float64{0, 1, 2}, want: []float64{0, 1, 2}},
		{name: "already normalized", lons: []float64{-180, -90, 0, 90}, want: []float64{-180, -90, 0, 90}},
	} {
		t.Run(test.name, func(t *testing.T) {
			ds := newTestGrid(t, []float64{0}, test.lons, nil)
			o, err := NormalizeLongitude(ds)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(o.Coord("lon"), test.want) {
				t.Errorf("got %v, want %v", o.Coord("lon"), test.want)
			}
		})
	}

	ds := newTestGrid(t, []float64{0}, []float64{0, 90, 180}, nil)
	o, err := SelectRegion(ds, BoundingBox{MaxLat: 10, MinLat: -10, MaxLon: -90, MinLon: -180})
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{-180}; !reflect.DeepEqual(o.Coord("lon"), want) {
		t.Errorf("select: got %v, want %v", o.Coord("lon"), want)
	}
	if want := []float64{180}; !reflect.DeepEqual(o.Vars["tas"].Data.Elements, want) {
		t.Errorf("select tas: got %v, want %v", o.Vars["tas"].Data.Elements, want)
	}
}
