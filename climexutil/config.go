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
	"os"
	"strings"
	"time"
	"unicode"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/climex"
	"github.com/spf13/cast"
)

// Timesteps are the valid values of the timestep option.
var Timesteps = []string{"0000", "0600", "1200", "1800"}

// checkTimestep makes sure ts is one of Timesteps.
func checkTimestep(ts string) (string, error) {
	for _, t := range Timesteps {
		if ts == t {
			return ts, nil
		}
	}
	return "", errors.Wrapf(climex.ErrInvalidArgument, "climex: invalid timestep %q; valid values are %s",
		ts, strings.Join(Timesteps, ", "))
}

// parseBBox converts a bounding box configuration value to a BoundingBox.
// The value can be a string of four numbers in the order
// max_lat,min_lat,max_lon,min_lon separated by commas or spaces,
// or a list of four numbers, as read from a configuration file.
// An empty value returns def.
func parseBBox(v interface{}, def climex.BoundingBox) (climex.BoundingBox, error) {
	var parts []string
	switch t := v.(type) {
	case nil:
		return def, nil
	case string:
		if strings.TrimSpace(t) == "" {
			return def, nil
		}
		parts = strings.FieldsFunc(t, func(r rune) bool { return r == ',' || unicode.IsSpace(r) })
	default:
		var err error
		parts, err = cast.ToStringSliceE(v)
		if err != nil {
			return def, errors.Wrapf(climex.ErrInvalidArgument, "climex: bbox: %v", err)
		}
		if len(parts) == 0 {
			return def, nil
		}
	}
	if len(parts) != 4 {
		return def, errors.Wrapf(climex.ErrInvalidArgument,
			"climex: bbox must have 4 values (max_lat,min_lat,max_lon,min_lon) but has %d", len(parts))
	}
	var vals [4]float64
	for i, p := range parts {
		f, err := cast.ToFloat64E(strings.TrimSpace(p))
		if err != nil {
			return def, errors.Wrapf(climex.ErrInvalidArgument, "climex: bbox value %q is not a number", p)
		}
		vals[i] = f
	}
	b := climex.BoundingBox{MaxLat: vals[0], MinLat: vals[1], MaxLon: vals[2], MinLon: vals[3]}
	return b, b.Validate()
}

// JoinBBoxArgs rewrites a "--bbox" flag that is followed by four separate
// numbers, as in "--bbox 60 48 3 -12", into the single argument
// "--bbox=60,48,3,-12" so that the negative values are not read as flags.
// Other arguments are returned unchanged.
func JoinBBoxArgs(args []string) []string {
	out := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		if args[i] == "--" {
			return append(out, args[i:]...)
		}
		if args[i] != "--bbox" || i+4 >= len(args) {
			out = append(out, args[i])
			continue
		}
		vals := args[i+1 : i+5]
		numeric := true
		for _, v := range vals {
			if _, err := cast.ToFloat64E(v); err != nil {
				numeric = false
				break
			}
		}
		if !numeric {
			out = append(out, args[i])
			continue
		}
		out = append(out, "--bbox="+strings.Join(vals, ","))
		i += 4
	}
	return out
}

// checkOutputDir expands any environment variables in dir and makes sure
// that it is an existing directory.
func checkOutputDir(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	dir = os.ExpandEnv(dir)
	fi, err := os.Stat(dir)
	if err != nil {
		return dir, errors.Wrapf(climex.ErrInvalidArgument, "climex: the output directory doesn't exist: %v", err)
	}
	if !fi.IsDir() {
		return dir, errors.Wrapf(climex.ErrInvalidArgument, "climex: output location %s is not a directory", dir)
	}
	return dir, nil
}

// checkSourceDir expands any environment variables in dir and makes sure
// that it is an existing directory.
func checkSourceDir(dir string) (string, error) {
	dir = os.ExpandEnv(dir)
	fi, err := os.Stat(dir)
	if err != nil {
		return dir, errors.Wrapf(climex.ErrInput, "climex: %v", err)
	}
	if !fi.IsDir() {
		return dir, errors.Wrapf(climex.ErrInput, "climex: %s is not a directory", dir)
	}
	return dir, nil
}

// checkIndex makes sure that a slice index option is not negative.
func checkIndex(name string, i int) (int, error) {
	if i < 0 {
		return 0, errors.Wrapf(climex.ErrInvalidArgument, "climex: %s must not be negative (got %d)", name, i)
	}
	return i, nil
}

// setLogging sets up the standard logger.
func setLogging(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339Nano,
		DisableSorting:  true,
	})
	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}
