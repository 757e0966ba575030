package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	"github.com/arthur-debert/stackops/cmd/stackops"
)

func main() {
	rootCmd := stackops.NewRootCmd()

	err := doc.GenMan(rootCmd, stackops.ManHeader(), os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
