package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/arthur-debert/stackops/cmd/stackops"
	"github.com/arthur-debert/stackops/pkg/ui/styles"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rootCmd := stackops.NewRootCmd()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		// Print the error in bold red
		errorStyle := styles.MergeStyles("Error", "Bold")
		fmt.Fprintln(os.Stderr, errorStyle.Render(fmt.Sprintf("Error: %v", err)))
		stop()
		os.Exit(1)
	}
}
