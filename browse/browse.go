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


// Package browse helps users find NetCDF files in a deep directory tree,
// such as a data archive organised by project, model and variable, by
// offering the sub-directories at each level as a numbered menu.
package browse

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spatialmodel/climex"
)

// All is the menu option that selects every sub-directory.
const All = "*"

// Options returns the sorted, unique names of the sub-directories of the
// directories that match the glob pattern.
func Options(pattern string) ([]string, error) {
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, errors.Wrapf(climex.ErrInvalidArgument, "browse: bad pattern %q: %v", pattern, err)
	}
	names := make(map[string]struct{})
	for _, m := range matches {
		entries, err := os.ReadDir(m)
		if err != nil {
			continue // not a directory
		}
		for _, e := range entries {
			if isDir(filepath.Join(m, e.Name())) {
				names[e.Name()] = struct{}{}
			}
		}
	}
	o := make([]string, 0, len(names))
	for n := range names {
		o = append(o, n)
	}
	sort.Strings(o)
	return o, nil
}

func isDir(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && fi.IsDir()
}

// Menu asks the user to choose a path through a directory tree.
type Menu struct {
	// In is where the choices are read from.
	In io.Reader

	// Out is where the options are written to.
	Out io.Writer
}

// Run starts at dir and, while the current path has sub-directories,
// asks the user to choose one of them, or all of them with the "*"
// option. When there is only one sub-directory it is chosen without
// asking. Run returns the glob pattern for the NetCDF files in the
// chosen directories and the files that match it.
func (m *Menu) Run(dir string) (pattern string, files []string, err error) {
	in := bufio.NewScanner(m.In)
	path := []string{dir}
	fmt.Fprintln(m.Out, dir)
	for {
		options, err := Options(filepath.Join(path...))
		if err != nil {
			return "", nil, err
		}
		if len(options) == 0 {
			break
		}
		var choice string
		if len(options) == 1 {
			choice = options[0]
		} else {
			options = append([]string{All}, options...)
			if choice, err = m.ask(in, options); err != nil {
				return "", nil, err
			}
		}
		logrus.WithField("choice", choice).Debug("selected directory")
		path = append(path, choice)
	}
	pattern = filepath.Join(append(path, "*.nc")...)
	files, err = filepath.Glob(pattern)
	if err != nil {
		return "", nil, errors.Wrapf(climex.ErrInvalidArgument, "browse: bad pattern %q: %v", pattern, err)
	}
	return pattern, files, nil
}

func (m *Menu) ask(in *bufio.Scanner, options []string) (string, error) {
	var b strings.Builder
	b.WriteString("Please select a numbered option from the list:\n")
	for i, o := range options {
		fmt.Fprintf(&b, "%d) %s\n", i, o)
	}
	fmt.Fprint(m.Out, b.String())
	if !in.Scan() {
		if err := in.Err(); err != nil {
			return "", errors.Wrapf(climex.ErrInvalidArgument, "browse: reading choice: %v", err)
		}
		return "", errors.Wrap(climex.ErrInvalidArgument, "browse: no choice made")
	}
	text := strings.TrimSpace(in.Text())
	i, err := strconv.Atoi(text)
	if err != nil || i < 0 || i >= len(options) {
		return "", errors.Wrapf(climex.ErrInvalidArgument, "browse: invalid choice %q: choose a number from 0 to %d",
			text, len(options)-1)
	}
	return options[i], nil
}
