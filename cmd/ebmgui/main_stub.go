//go:build !ebiten

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

package main

import (
	"fmt"
	"os"
)

func main() {
	fmt.Fprintln(os.Stderr, "The EBM desktop window requires the ebiten build tag.")
	fmt.Fprintln(os.Stderr, "Build with `go build -tags ebiten ./cmd/ebmgui`, or use `ebm serve` for the browser interface.")
	os.Exit(2)
}
