// Command sqlrecord inspects dialects, generated commands and connections.
package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/syssam/sqlrecord/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := cli.Execute(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
