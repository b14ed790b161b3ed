/*
Copyright © 2026 the EBM authors.
This file is part of EBM.

EBM is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

EBM is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with EBM.  If not, see <http://www.gnu.org/licenses/>.
*/

// Command ebm is a command-line interface for the EBM energy-balance
// climate model.
package main

import (
	"fmt"
	"os"

	"github.com/spatialmodel/ebm/ebmutil"
)

func main() {
	var commands int
	for _, arg := range os.Args { // Count the number of supplied commands.
		if arg == "" || arg[0] != '-' {
			commands++
		}
	}
	if commands == 1 { // If no subcommand was supplied, serve an interactive session.
		ebmutil.Root.SetArgs(append([]string{"serve"}, os.Args[1:]...))
	}

	if err := ebmutil.Root.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(-1)
	}
}
