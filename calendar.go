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
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// timeUnits decodes and encodes CF time coordinate values of the form
// "<unit> since <reference date>" in a given calendar.
type timeUnits struct {
	// unit is the length of one unit in seconds.
	unit float64

	// epoch is the reference date.
	year, month, day int
	seconds          float64 // since midnight

	calendar string
}

var unitSeconds = map[string]float64{
	"days": 86400, "day": 86400, "d": 86400,
	"hours": 3600, "hour": 3600, "hr": 3600, "h": 3600,
	"minutes": 60, "minute": 60, "min": 60,
	"seconds": 1, "second": 1, "sec": 1, "s": 1,
}

// monthDays holds the month lengths of the calendars with a fixed
// year length.
var monthDays = map[string][]int{
	"noleap":   {31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31},
	"all_leap": {31, 29, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31},
	"360_day":  {30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30, 30},
}

var calendarAliases = map[string]string{
	"":                    "standard",
	"standard":            "standard",
	"gregorian":           "standard",
	"proleptic_gregorian": "standard",
	"noleap":              "noleap",
	"365_day":             "noleap",
	"all_leap":            "all_leap",
	"366_day":             "all_leap",
	"360_day":             "360_day",
}

// parseTimeUnits parses a CF units string such as
// "days since 1850-01-01 00:00:00" for the given calendar.
func parseTimeUnits(units, calendar string) (timeUnits, error) {
	var u timeUnits
	cal, ok := calendarAliases[strings.ToLower(strings.TrimSpace(calendar))]
	if !ok {
		return u, errors.Wrapf(ErrInput, "climex: unsupported calendar %q", calendar)
	}
	u.calendar = cal

	parts := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(parts) != 2 {
		return u, errors.Wrapf(ErrInput, "climex: time units %q are not of the form '<unit> since <date>'", units)
	}
	u.unit, ok = unitSeconds[strings.ToLower(strings.TrimSpace(parts[0]))]
	if !ok {
		return u, errors.Wrapf(ErrInput, "climex: unsupported time unit %q", parts[0])
	}

	fields := strings.Fields(strings.Replace(strings.TrimSpace(parts[1]), "T", " ", 1))
	if len(fields) == 0 {
		return u, errors.Wrapf(ErrInput, "climex: missing reference date in time units %q", units)
	}
	date := strings.Split(fields[0], "-")
	if len(date) != 3 {
		return u, errors.Wrapf(ErrInput, "climex: invalid reference date in time units %q", units)
	}
	var err error
	if u.year, err = strconv.Atoi(date[0]); err == nil {
		if u.month, err = strconv.Atoi(date[1]); err == nil {
			u.day, err = strconv.Atoi(date[2])
		}
	}
	if err != nil || u.month < 1 || u.month > 12 || u.day < 1 || u.day > 31 {
		return u, errors.Wrapf(ErrInput, "climex: invalid reference date in time units %q", units)
	}
	if len(fields) > 1 {
		clock := strings.TrimSuffix(fields[1], "Z")
		hms := strings.Split(clock, ":")
		scale := 3600.0
		for _, s := range hms {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return u, errors.Wrapf(ErrInput, "climex: invalid reference time in time units %q", units)
			}
			u.seconds += v * scale
			scale /= 60
		}
	}
	return u, nil
}

// Year returns the calendar year of the time value v.
func (u timeUnits) Year(v float64) int {
	secs := v * u.unit
	if u.calendar == "standard" {
		return u.standardTime(secs).Year()
	}
	days := u.epochDays() + (u.seconds+secs)/86400
	return int(math.Floor(days / float64(u.yearLength())))
}

// YearEnd returns the time value of midnight at the start of the last
// day of the given year.
func (u timeUnits) YearEnd(year int) float64 {
	if u.calendar == "standard" {
		end := time.Date(year, 12, 31, 0, 0, 0, 0, time.UTC)
		epoch := u.standardTime(0)
		return float64(end.Unix()-epoch.Unix()) / u.unit
	}
	md := monthDays[u.calendar]
	end := u.fixedDays(year, 12, md[11])
	return ((end-u.epochDays())*86400 - u.seconds) / u.unit
}

// standardTime returns the Gregorian date secs seconds after the epoch.
func (u timeUnits) standardTime(secs float64) time.Time {
	epoch := time.Date(u.year, time.Month(u.month), u.day, 0, 0, 0, 0, time.UTC)
	total := u.seconds + secs
	whole := math.Floor(total)
	return time.Unix(epoch.Unix()+int64(whole), int64((total-whole)*1e9)).UTC()
}

func (u timeUnits) yearLength() int {
	n := 0
	for _, d := range monthDays[u.calendar] {
		n += d
	}
	return n
}

// fixedDays returns the number of days between year 0 and the given
// date in a calendar with a fixed year length.
func (u timeUnits) fixedDays(year, month, day int) float64 {
	days := year * u.yearLength()
	for _, d := range monthDays[u.calendar][:month-1] {
		days += d
	}
	return float64(days + day - 1)
}

func (u timeUnits) epochDays() float64 {
	return u.fixedDays(u.year, u.month, u.day)
}
