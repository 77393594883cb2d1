package climex

import (
	"math"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/batchatco/go-native-netcdf/netcdf/api"
	"github.com/batchatco/go-native-netcdf/netcdf/hdf5"
	"github.com/batchatco/go-native-netcdf/netcdf/util"
	"github.com/pkg/errors"
)

func attributeMap(t *testing.T, keys []string, vals map[string]interface{}) api.AttributeMap {
	t.Helper()
	m, err := util.NewOrderedMap(keys, vals)
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestOpenHDF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tas.nc")
	w, err := hdf5.OpenWriter(path)
	if err != nil {
		t.Fatal(err)
	}
	vars := []struct {
		name string
		v    api.Variable
	}{
		{"lat", api.Variable{
			Values:     []float64{50, 55},
			Dimensions: []string{"lat"},
			Attributes: attributeMap(t, []string{"units"}, map[string]interface{}{"units": "degrees_north"}),
		}},
		{"lon", api.Variable{
			Values:     []float64{-5, 0, 5},
			Dimensions: []string{"lon"},
			Attributes: attributeMap(t, nil, nil),
		}},
		{"tas", api.Variable{
			Values:     [][]float32{{280, 281.5, -999}, {282, 283.25, 284}},
			Dimensions: []string{"lat", "lon"},
			Attributes: attributeMap(t, []string{"units", "missing_value"},
				map[string]interface{}{"units": "K", "missing_value": float32(-999)}),
		}},
		{"crs", api.Variable{
			Values:     int32(4326),
			Attributes: attributeMap(t, nil, nil),
		}},
	}
	for _, v := range vars {
		if err := w.AddVar(v.name, v.v); err != nil {
			t.Fatal(err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	ds, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if ds.Source != path {
		t.Errorf("source: got %s, want %s", ds.Source, path)
	}
	if _, ok := ds.Vars["crs"]; ok {
		t.Error("scalar variable should be skipped")
	}
	if want := []float64{50, 55}; !reflect.DeepEqual(ds.Coord("lat"), want) {
		t.Errorf("lat: got %v, want %v", ds.Coord("lat"), want)
	}
	if want := []float64{-5, 0, 5}; !reflect.DeepEqual(ds.Coord("lon"), want) {
		t.Errorf("lon: got %v, want %v", ds.Coord("lon"), want)
	}
	tas, ok := ds.Vars["tas"]
	if !ok {
		t.Fatal("missing tas")
	}
	if want := []int{2, 3}; !reflect.DeepEqual(tas.Data.Shape, want) {
		t.Fatalf("shape: got %v, want %v", tas.Data.Shape, want)
	}
	want := []float64{280, 281.5, math.NaN(), 282, 283.25, 284}
	if !sameFloats(tas.Data.Elements, want) {
		t.Errorf("tas: got %v, want %v", tas.Data.Elements, want)
	}
	if tas.Attribute("units") != "K" {
		t.Errorf("units: got %q", tas.Attribute("units"))
	}
	if _, ok := tas.Attributes["missing_value"]; ok {
		t.Error("missing_value should be removed after decoding")
	}
	if lat, lon, err := ds.LatLonDims(); err != nil || lat != "lat" || lon != "lon" {
		t.Errorf("LatLonDims: got %s, %s, %v", lat, lon, err)
	}

	b := BoundingBox{MaxLat: 52, MinLat: 48, MaxLon: 1, MinLon: -6}
	region, err := SelectRegion(ds, b)
	if err != nil {
		t.Fatal(err)
	}
	if want := []float64{280, 281.5}; !reflect.DeepEqual(region.Vars["tas"].Data.Elements, want) {
		t.Errorf("region: got %v, want %v", region.Vars["tas"].Data.Elements, want)
	}
	if _, err := SelectRegion(ds, BoundingBox{MaxLat: 90, MinLat: 80, MaxLon: 1, MinLon: -6}); errors.Cause(err) != ErrEmptySelection {
		t.Errorf("empty: got %v, want %v", err, ErrEmptySelection)
	}
}
