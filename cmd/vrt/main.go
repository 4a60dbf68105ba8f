// Command vrt releases npm packages and upgrades their dependencies.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/randalmurphal/vrt/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := cli.Execute(ctx, &cli.App{}, os.Args[1:])
	stop()
	os.Exit(code)
}
