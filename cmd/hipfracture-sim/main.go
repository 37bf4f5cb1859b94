// Command hipfracture-sim generates hip fracture patient arrivals for one catchment and year.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/AntonStoeckl/hipfracture-arrivals/cmd/hipfracture-sim/commands"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := commands.Execute(ctx)
	stop()

	if err != nil {
		os.Exit(1)
	}
}
