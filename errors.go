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

import "github.com/pkg/errors"

// These are the kinds of failure the tools can report. Returned errors wrap
// one of them with context; use errors.Cause to recover the kind.
var (
	// ErrInput means that there were no input files, or that an input
	// file could not be read or interpreted.
	ErrInput = errors.New("input error")

	// ErrMerge means that the input files do not share a coordinate system.
	ErrMerge = errors.New("files cannot be merged on coincident coordinates")

	// ErrInvalidRange means that a bounding box is inverted or out of domain.
	ErrInvalidRange = errors.New("invalid range")

	// ErrEmptySelection means that a bounding box does not intersect the
	// data coverage.
	ErrEmptySelection = errors.New("empty selection")

	// ErrInvalidArgument means that a command-line argument failed validation.
	ErrInvalidArgument = errors.New("invalid argument")
)
