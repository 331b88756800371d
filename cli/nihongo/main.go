package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	nihongocmder "github.com/papercomputeco/nihongo/cmd/nihongo"
	"github.com/papercomputeco/nihongo/pkg/cliui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	cmd := nihongocmder.NewNihongoCmd()
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", cliui.FailMark, err)
		os.Exit(1)
	}
}
