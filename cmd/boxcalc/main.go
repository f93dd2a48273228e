// Boxcalc is a terminal calculator made of boxes that feed into each other.
// Several instances can share one calculator state through a relay, and keep
// it in a server's database.
package main

import (
	"os"

	"src.devlab.sh/pkg/buildinfo"
	"src.devlab.sh/pkg/pprof"
	"src.devlab.sh/pkg/prog"
	"src.devlab.sh/pkg/server"
	"src.devlab.sh/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			&buildinfo.Program{}, &pprof.Program{},
			&server.Program{}, &shell.Program{})))
}
