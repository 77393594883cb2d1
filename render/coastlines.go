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


package render

import (
	"strings"

	"github.com/ctessum/geom"
	"github.com/jonas-p/go-shp"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/climex"
	"gonum.org/v1/plot/plotter"
)

// ReadCoastlines reads the parts of the polyline and polygon shapes in
// the shapefile at path, in longitude-latitude coordinates.
func ReadCoastlines(path string) ([]plotter.XYs, error) {
	if !strings.HasSuffix(strings.ToLower(path), ".shp") {
		return nil, errors.Wrapf(climex.ErrInvalidArgument, "render: coastline file %s is not a shapefile", path)
	}
	r, err := shp.Open(path)
	if err != nil {
		return nil, errors.Wrapf(climex.ErrInput, "render: %v", err)
	}
	defer r.Close()

	var lines []plotter.XYs
	for r.Next() {
		_, s := r.Shape()
		var parts []int32
		var points []shp.Point
		switch s := s.(type) {
		case *shp.PolyLine:
			parts, points = s.Parts, s.Points
		case *shp.Polygon:
			parts, points = s.Parts, s.Points
		default:
			continue
		}
		for i, start := range parts {
			end := int32(len(points))
			if i+1 < len(parts) {
				end = parts[i+1]
			}
			if end-start < 2 {
				continue
			}
			xy := make(plotter.XYs, end-start)
			for j, p := range points[start:end] {
				xy[j].X, xy[j].Y = p.X, p.Y
			}
			lines = append(lines, xy)
		}
	}
	if err := r.Err(); err != nil {
		return nil, errors.Wrapf(climex.ErrInput, "render: reading %s: %v", path, err)
	}
	logrus.WithFields(logrus.Fields{"file": path, "lines": len(lines)}).Debug("read coastlines")
	return lines, nil
}

// ClipCoastlines returns the lines whose extent overlaps b.
func ClipCoastlines(lines []plotter.XYs, b climex.BoundingBox) []plotter.XYs {
	box := &geom.Bounds{
		Min: geom.Point{X: b.MinLon, Y: b.MinLat},
		Max: geom.Point{X: b.MaxLon, Y: b.MaxLat},
	}
	var o []plotter.XYs
	for _, l := range lines {
		ls := make(geom.LineString, len(l))
		for i, p := range l {
			ls[i] = geom.Point{X: p.X, Y: p.Y}
		}
		if ls.Bounds().Overlaps(box) {
			o = append(o, l)
		}
	}
	return o
}
