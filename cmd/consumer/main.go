// Command consumer records published reset session events in Postgres.
package main

import (
	"os"

	"example.com/mentalreset/internal/cli"
)

func main() {
	cli.Execute(cli.NewRootCommand(), append([]string{"consume"}, os.Args[1:]...))
}
