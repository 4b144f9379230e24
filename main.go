// lports reports the ports a set of configured components listen on.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"lports/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "lports: %v\n", err)
		os.Exit(1)
	}
}
