// Command tallyctl inspects, converts and sums measurement-count files.
package main

import (
	"fmt"
	"os"

	"github.com/arloliu/tally/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
