// Command cardextract reads OCR documents of Japanese health-insurance cards
// and extracts their fields, one file at a time or in batches.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	root, cleanup := newRootCmd()
	err := root.ExecuteContext(ctx)
	cleanup()
	stop()
	if err != nil {
		if _, werr := fmt.Fprintln(os.Stderr, "Error:", err); werr != nil {
			fmt.Println("Error:", err)
		}
		os.Exit(1)
	}
}
