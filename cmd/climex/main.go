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


// Command climex is a command-line interface for extracting regions from
// gridded climate datasets and summarizing station precipitation records.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/climex/climexutil"
)

func main() {
	climexutil.Root.SetArgs(climexutil.JoinBBoxArgs(os.Args[1:]))
	if err := climexutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
