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


// Package render draws maps and time series of climate data as PNG images.
package render

import (
	"image/color"
	"math"
	"os"

	"github.com/pkg/errors"
	"github.com/spatialmodel/climex"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// MapOptions specifies how a map is drawn.
type MapOptions struct {
	// Box is the extent of the map.
	Box climex.BoundingBox

	// Indices gives the index to draw along each dimension of the
	// variable other than latitude and longitude. Dimensions that are
	// not listed are drawn at index 0.
	Indices map[string]int

	// Coastlines are drawn over the data if not nil.
	Coastlines []plotter.XYs

	// Title is the plot title. The variable name is used if it is empty.
	Title string
}

// Figure is a map with a colour bar underneath.
type Figure struct {
	Map, Legend *plot.Plot
}

// legendFraction is the fraction of the figure height used by the colour bar.
const legendFraction = 0.12

// Draw draws the figure to c.
func (f *Figure) Draw(c draw.Canvas) {
	h := c.Max.Y - c.Min.Y
	f.Map.Draw(draw.Crop(c, 0, 0, h*legendFraction, 0))
	f.Legend.Draw(draw.Crop(c, 0, 0, 0, -h*(1-legendFraction)))
}

// SavePNG writes the figure to a PNG file of the given size.
func (f *Figure) SavePNG(path string, w, h vg.Length) error {
	img := vgimg.New(w, h)
	f.Draw(draw.New(img))
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// Map draws a heat map of variable over the region in o.Box.
func Map(ds *climex.Dataset, variable string, o MapOptions) (*Figure, error) {
	v, ok := ds.Vars[variable]
	if !ok {
		return nil, errors.Wrapf(climex.ErrInvalidArgument, "render: %s: no variable %s", ds.Source, variable)
	}
	if err := o.Box.Validate(); err != nil {
		return nil, err
	}
	latDim, lonDim, err := ds.LatLonDims()
	if err != nil {
		return nil, err
	}
	g, err := newGrid(ds, v, latDim, lonDim, o.Indices)
	if err != nil {
		return nil, errors.Wrapf(err, "render: %s", variable)
	}

	cm := moreland.ExtendedBlackBody()
	min, max := g.Min(), g.Max()
	cm.SetMin(min)
	cm.SetMax(max)
	hm := plotter.NewHeatMap(g, cm.Palette(255))
	hm.NaN = color.Transparent

	p := plot.New()
	p.Title.Text = o.Title
	if p.Title.Text == "" {
		p.Title.Text = variable
	}
	p.X.Label.Text = "Longitude"
	p.Y.Label.Text = "Latitude"
	p.Add(hm)
	for _, c := range o.Coastlines {
		l, err := plotter.NewLine(c)
		if err != nil {
			return nil, errors.Wrap(climex.ErrInput, err.Error())
		}
		l.Color = color.Black
		l.Width = vg.Points(0.5)
		p.Add(l)
	}
	// HeatMap skips cells that cross the edge of the plot area, so the axes
	// cover the whole of every cell centred in the box.
	p.X.Min, p.X.Max = axisRange(g.lons, o.Box.MinLon, o.Box.MaxLon)
	p.Y.Min, p.Y.Max = axisRange(g.lats, o.Box.MinLat, o.Box.MaxLat)

	legend := plot.New()
	legend.Add(&plotter.ColorBar{ColorMap: cm})
	legend.HideY()
	legend.X.Padding = 0
	if units := v.Attribute("units"); units != "" {
		legend.X.Label.Text = units
	}
	return &Figure{Map: p, Legend: legend}, nil
}

// grid is a two-dimensional latitude-longitude field with rows and
// columns in increasing coordinate order.
type grid struct {
	lats, lons []float64
	z          []float64 // row major, latitude first
	min, max   float64
}

// newGrid extracts the latitude-longitude slice of v at the given indices
// of its other dimensions.
func newGrid(ds *climex.Dataset, v *climex.Variable, latDim, lonDim string, indices map[string]int) (*grid, error) {
	shape := v.Data.Shape
	index := make([]int, len(shape))
	latAx, lonAx := -1, -1
	for i, d := range v.Dims {
		switch d {
		case latDim:
			latAx = i
		case lonDim:
			lonAx = i
		default:
			index[i] = indices[d]
			if index[i] < 0 || index[i] >= shape[i] {
				return nil, errors.Wrapf(climex.ErrInvalidRange, "index %d out of range for dimension %s of length %d",
					index[i], d, shape[i])
			}
		}
	}
	if latAx < 0 || lonAx < 0 {
		return nil, errors.Wrapf(climex.ErrInvalidArgument, "variable is not indexed by %s and %s", latDim, lonDim)
	}

	g := &grid{
		lats: append([]float64(nil), ds.Coord(latDim)...),
		lons: append([]float64(nil), ds.Coord(lonDim)...),
	}
	ny, nx := len(g.lats), len(g.lons)
	g.z = make([]float64, ny*nx)
	for j := 0; j < ny; j++ {
		index[latAx] = j
		for i := 0; i < nx; i++ {
			index[lonAx] = i
			g.z[j*nx+i] = v.Data.Get(index...)
		}
	}
	if ny > 1 && g.lats[0] > g.lats[ny-1] {
		g.flipRows()
	}
	if nx > 1 && g.lons[0] > g.lons[nx-1] {
		g.flipCols()
	}

	g.min, g.max = math.Inf(1), math.Inf(-1)
	for _, z := range g.z {
		if !math.IsNaN(z) {
			g.min = math.Min(g.min, z)
			g.max = math.Max(g.max, z)
		}
	}
	if math.IsInf(g.min, 1) {
		g.min, g.max = 0, 1
	} else if g.min == g.max {
		g.max = g.min + 1
	}
	return g, nil
}

// axisRange returns the smallest range that includes [lo, hi] and every
// cell whose centre lies in [lo, hi]. x holds the increasing cell centres.
func axisRange(x []float64, lo, hi float64) (min, max float64) {
	min, max = lo, hi
	for i, c := range x {
		if c < lo || c > hi {
			continue
		}
		left, right := cellBounds(x, i)
		min = math.Min(min, left)
		max = math.Max(max, right)
	}
	return min, max
}

// cellBounds returns the edges of cell i the way plotter.HeatMap draws
// them: halfway to each neighbour, and symmetric at the ends.
func cellBounds(x []float64, i int) (left, right float64) {
	n := len(x)
	switch {
	case n == 1:
		return x[0] - 0.5, x[0] + 0.5
	case i == 0:
		h := (x[1] - x[0]) / 2
		return x[0] - h, x[0] + h
	case i == n-1:
		h := (x[i] - x[i-1]) / 2
		return x[i] - h, x[i] + h
	}
	return x[i] - (x[i]-x[i-1])/2, x[i] + (x[i+1]-x[i])/2
}

func (g *grid) flipRows() {
	ny, nx := len(g.lats), len(g.lons)
	reverse(g.lats)
	for j := 0; j < ny/2; j++ {
		for i := 0; i < nx; i++ {
			a, b := j*nx+i, (ny-1-j)*nx+i
			g.z[a], g.z[b] = g.z[b], g.z[a]
		}
	}
}

func (g *grid) flipCols() {
	ny, nx := len(g.lats), len(g.lons)
	reverse(g.lons)
	for j := 0; j < ny; j++ {
		for i := 0; i < nx/2; i++ {
			a, b := j*nx+i, j*nx+nx-1-i
			g.z[a], g.z[b] = g.z[b], g.z[a]
		}
	}
}

func reverse(x []float64) {
	for i, j := 0, len(x)-1; i < j; i, j = i+1, j-1 {
		x[i], x[j] = x[j], x[i]
	}
}

func (g *grid) Dims() (c, r int)   { return len(g.lons), len(g.lats) }
func (g *grid) Z(c, r int) float64 { return g.z[r*len(g.lons)+c] }
func (g *grid) X(c int) float64    { return g.lons[c] }
func (g *grid) Y(r int) float64    { return g.lats[r] }
func (g *grid) Min() float64       { return g.min }
func (g *grid) Max() float64       { return g.max }
