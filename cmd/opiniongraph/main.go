// Command opiniongraph extracts opinion phrases from tagged corpora on the
// command line.
package main

import (
	"os"

	"github.com/turtacn/OpinionGraph/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:]))
}

//Personal.AI order the ending
