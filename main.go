// The main package for the athlecrawl executable.
package main

import (
	"os"

	"github.com/athledata/athlecrawl/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
