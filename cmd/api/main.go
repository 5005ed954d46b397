// Command api runs the mental reset service. Without arguments it serves the
// HTTP API; any subcommand of the mentalreset CLI can be given instead.
package main

import (
	"os"

	"example.com/mentalreset/internal/cli"
)

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		args = []string{"serve"}
	}
	cli.Execute(cli.NewRootCommand(), args)
}
