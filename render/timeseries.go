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
	"fmt"

	"github.com/pkg/errors"
	"github.com/spatialmodel/climex"
	"github.com/spatialmodel/climex/midas"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
)

// Timeseries plots the annual minimum, maximum and mean precipitation
// in s, which were measured at the named station.
func Timeseries(s midas.Series, station string) (*plot.Plot, error) {
	if len(s) == 0 {
		return nil, errors.Wrap(climex.ErrInput, "render: empty precipitation series")
	}
	min := make(plotter.XYs, len(s))
	max := make(plotter.XYs, len(s))
	mean := make(plotter.XYs, len(s))
	for i, y := range s {
		x := float64(y.Year)
		min[i].X, min[i].Y = x, y.Min
		max[i].X, max[i].Y = x, y.Max
		mean[i].X, mean[i].Y = x, y.Mean
	}

	first, last := s.Years()
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Annual Precipitation from %d to %d: %s", first, last, station)
	p.X.Label.Text = "Year"
	p.Y.Label.Text = "Precipitation (mm)"
	p.Legend.Top = true
	if err := plotutil.AddLinePoints(p, "min", min, "max", max, "mean", mean); err != nil {
		return nil, errors.Wrap(climex.ErrInput, err.Error())
	}
	return p, nil
}

// MapName returns the output file name for a map of variable at the
// given timestep.
func MapName(variable, timestep string) string {
	return fmt.Sprintf("%s_%s.png", variable, timestep)
}

// PrecipName returns the output file name for the precipitation time
// series of station.
func PrecipName(station string, s midas.Series) string {
	first, last := s.Years()
	return fmt.Sprintf("%s_precipitation_%d_%d.png", station, first, last)
}
