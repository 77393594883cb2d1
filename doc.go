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

// Package climex reads gridded climate datasets stored as NetCDF files,
// merges files that share a coordinate system, extracts rectangular
// geographic regions from them and writes derived datasets.
//
// Gridded data are commonly stored with longitudes in the range [0, 360).
// ExtractArea rotates such grids so that longitudes run from -180 to 180
// before selecting a region, so that regions that straddle the prime
// meridian (for example the United Kingdom) can be selected as one
// contiguous block.
//
// Command-line access to the functionality in this package is provided
// by the climex command (github.com/spatialmodel/climex/cmd/climex).
package climex
