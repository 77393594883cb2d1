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


// Package midas reads annual precipitation summaries from MIDAS-open
// rain gauge files. MIDAS-open files are in BADC-CSV format: a block of
// metadata lines followed by a CSV table with a header row and an
// "end data" trailer.
package midas

import (
	"bufio"
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/GaryBoone/GoStats/stats"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/climex"
	"gonum.org/v1/gonum/stat"
)

// Options specifies how to read a file.
type Options struct {
	// HeaderLine is the number of lines before the CSV column header.
	HeaderLine int

	// PrecipColumn is the name of the precipitation amount column.
	PrecipColumn string

	// DateColumn is the name of the observation date column. If the file
	// has no such column, "ob_end_time" is used instead.
	DateColumn string
}

// DefaultOptions are the options for MIDAS-open daily rainfall files.
var DefaultOptions = Options{
	HeaderLine:   61,
	PrecipColumn: "prcp_amt",
	DateColumn:   "ob_date",
}

const fallbackDateColumn = "ob_end_time"

var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Summary holds the annual precipitation statistics of one file.
type Summary struct {
	Year           int
	Min, Max, Mean float64
}

// Series is a set of annual summaries sorted by year.
type Series []Summary

// Years returns the first and last year in s.
func (s Series) Years() (first, last int) {
	if len(s) == 0 {
		return 0, 0
	}
	return s[0].Year, s[len(s)-1].Year
}

// ReadFile computes the precipitation summary of the file at path.
// Empty and non-numeric precipitation values are skipped. The year is
// that of the earliest observation date.
func ReadFile(path string, o Options) (Summary, error) {
	if o.PrecipColumn == "" {
		o.PrecipColumn = DefaultOptions.PrecipColumn
	}
	if o.DateColumn == "" {
		o.DateColumn = DefaultOptions.DateColumn
	}
	f, err := os.Open(path)
	if err != nil {
		return Summary{}, errors.Wrapf(climex.ErrInput, "midas: %v", err)
	}
	defer f.Close()
	s, err := read(f, o)
	if err != nil {
		return Summary{}, errors.Wrapf(err, "midas: %s", path)
	}
	logrus.WithFields(logrus.Fields{
		"file": path,
		"year": s.Year,
		"mean": s.Mean,
	}).Debug("read precipitation file")
	return s, nil
}

func read(r io.Reader, o Options) (Summary, error) {
	br := bufio.NewReader(r)
	for i := 0; i < o.HeaderLine; i++ {
		if _, err := br.ReadString('\n'); err != nil {
			return Summary{}, errors.Wrapf(climex.ErrInput, "file has fewer than %d header lines", o.HeaderLine)
		}
	}
	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return Summary{}, errors.Wrapf(climex.ErrInput, "reading column header: %v", err)
	}
	precipCol, dateCol := -1, -1
	fallbackCol := -1
	for i, h := range header {
		switch strings.TrimSpace(h) {
		case o.PrecipColumn:
			precipCol = i
		case o.DateColumn:
			dateCol = i
		case fallbackDateColumn:
			fallbackCol = i
		}
	}
	if dateCol < 0 {
		dateCol = fallbackCol
	}
	if precipCol < 0 {
		return Summary{}, errors.Wrapf(climex.ErrInput, "no column %s", o.PrecipColumn)
	}
	if dateCol < 0 {
		return Summary{}, errors.Wrapf(climex.ErrInput, "no column %s or %s", o.DateColumn, fallbackDateColumn)
	}

	var values []float64
	var first time.Time
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Summary{}, errors.Wrap(climex.ErrInput, err.Error())
		}
		if len(rec) > 0 && strings.TrimSpace(rec[0]) == "end data" {
			break
		}
		if dateCol < len(rec) {
			if t, ok := parseDate(rec[dateCol]); ok && (first.IsZero() || t.Before(first)) {
				first = t
			}
		}
		if precipCol < len(rec) {
			v, err := strconv.ParseFloat(strings.TrimSpace(rec[precipCol]), 64)
			if err == nil {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return Summary{}, errors.Wrapf(climex.ErrInput, "no %s values", o.PrecipColumn)
	}
	if first.IsZero() {
		return Summary{}, errors.Wrap(climex.ErrInput, "no observation dates")
	}
	return Summary{
		Year: first.Year(),
		Min:  stats.StatsMin(values),
		Max:  stats.StatsMax(values),
		Mean: stat.Mean(values, nil),
	}, nil
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ReadDir reads the summaries of all regular files in dir and returns
// them sorted by year.
func ReadDir(dir string, o Options) (Series, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, errors.Wrapf(climex.ErrInput, "midas: %v", err)
	}
	var s Series
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}
		summary, err := ReadFile(path, o)
		if err != nil {
			return nil, err
		}
		s = append(s, summary)
	}
	if len(s) == 0 {
		return nil, errors.Wrapf(climex.ErrInput, "midas: no files in %s", dir)
	}
	sort.SliceStable(s, func(i, j int) bool { return s[i].Year < s[j].Year })
	return s, nil
}

// StationName returns the name of the station whose files are in dir,
// which is the name of the parent directory of dir.
func StationName(dir string) string {
	dir = strings.TrimSuffix(dir, string(os.PathSeparator))
	return filepath.Base(filepath.Dir(dir))
}
