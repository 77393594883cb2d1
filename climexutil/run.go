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


package climexutil

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/climex"
	"github.com/spatialmodel/climex/browse"
	"github.com/spatialmodel/climex/midas"
	"github.com/spatialmodel/climex/render"
	"gonum.org/v1/plot/vg"
)

// Figure sizes.
var (
	mapWidth, mapHeight       = 8 * vg.Inch, 7 * vg.Inch
	seriesWidth, seriesHeight = 10 * vg.Inch, 5 * vg.Inch
)

// Region extracts the region b from the files in sourceDir for the given
// timestep and saves a map of variable to outputDir. timeIndex and
// levelIndex select the position along the first and second non-spatial
// dimensions of the variable. coastlines is an optional shapefile to draw
// over the map. It returns the path of the map it wrote.
func Region(ctx context.Context, sourceDir, outputDir, timestep, variable string, b climex.BoundingBox,
	timeIndex, levelIndex int, coastlines string) (string, error) {

	files, err := climex.FindFiles(sourceDir, "*"+timestep+".nc")
	if err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{"dir": sourceDir, "files": len(files), "bbox": b.String()}).Info("extracting region")
	ds, err := climex.ExtractArea(ctx, files, b)
	if err != nil {
		return "", err
	}
	v, ok := ds.Vars[variable]
	if !ok {
		return "", errors.Wrapf(climex.ErrInvalidArgument, "climex: %s: no variable %s", ds.Source, variable)
	}
	latDim, lonDim, err := ds.LatLonDims()
	if err != nil {
		return "", err
	}
	indices := make(map[string]int)
	leading := []int{timeIndex, levelIndex}
	for _, d := range v.Dims {
		if d == latDim || d == lonDim || len(leading) == 0 {
			continue
		}
		indices[d] = leading[0]
		leading = leading[1:]
	}

	o := render.MapOptions{
		Box:     b,
		Indices: indices,
		Title:   fmt.Sprintf("%s %s", variable, timestep),
	}
	if coastlines != "" {
		lines, err := render.ReadCoastlines(os.ExpandEnv(coastlines))
		if err != nil {
			return "", err
		}
		o.Coastlines = render.ClipCoastlines(lines, b)
	}
	fig, err := render.Map(ds, variable, o)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, render.MapName(variable, timestep))
	if err := fig.SavePNG(path, mapWidth, mapHeight); err != nil {
		return "", errors.Wrapf(err, "climex: writing %s", path)
	}
	logrus.WithField("file", path).Info("saved map")
	return path, nil
}

// Annual extracts the region b from the files in sourceDir that match
// pattern, resamples it to annual means and writes the result to
// outputDir/outputName. It returns the path of the file it wrote.
func Annual(ctx context.Context, sourceDir, pattern, outputDir, outputName string, b climex.BoundingBox) (string, error) {
	files, err := climex.FindFiles(sourceDir, pattern)
	if err != nil {
		return "", err
	}
	logrus.WithFields(logrus.Fields{"dir": sourceDir, "files": len(files), "bbox": b.String()}).Info("extracting region")
	ds, err := climex.ExtractArea(ctx, files, b)
	if err != nil {
		return "", err
	}
	annual, err := climex.ResampleAnnualMean(ds)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, outputName)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(climex.ErrInvalidArgument, "climex: %v", err)
	}
	if err := annual.WriteNCF(f); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	logrus.WithField("file", path).Info("saved annual means")
	return path, nil
}

// Precip summarizes the MIDAS rain observation files in sourceDir and
// saves a plot of the annual minimum, maximum and mean precipitation to
// outputDir. It returns the path of the plot it wrote.
func Precip(sourceDir, outputDir string, o midas.Options) (string, error) {
	s, err := midas.ReadDir(sourceDir, o)
	if err != nil {
		return "", err
	}
	station := midas.StationName(sourceDir)
	p, err := render.Timeseries(s, station)
	if err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, render.PrecipName(station, s))
	if err := p.Save(seriesWidth, seriesHeight, path); err != nil {
		return "", errors.Wrapf(err, "climex: writing %s", path)
	}
	logrus.WithFields(logrus.Fields{"file": path, "station": station, "years": len(s)}).Info("saved precipitation plot")
	return path, nil
}

// Browse runs the interactive directory menu starting at sourceDir,
// reading choices from in and writing prompts to out. The selected files
// are written one per line to listFile, or to out if listFile is empty.
func Browse(in io.Reader, out io.Writer, sourceDir, listFile string) ([]string, error) {
	m := &browse.Menu{In: in, Out: out}
	pattern, files, err := m.Run(sourceDir)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(out, "Command to get selected files: ls -l %s\n", pattern)
	list := strings.Join(files, "\n")
	if len(files) > 0 {
		list += "\n"
	}
	if listFile == "" {
		_, err = io.WriteString(out, list)
		return files, err
	}
	listFile = os.ExpandEnv(listFile)
	if err := os.WriteFile(listFile, []byte(list), 0644); err != nil {
		return nil, errors.Wrapf(climex.ErrInvalidArgument, "climex: %v", err)
	}
	logrus.WithFields(logrus.Fields{"file": listFile, "files": len(files)}).Info("saved file list")
	return files, nil
}
