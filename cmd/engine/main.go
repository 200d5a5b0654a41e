package main

import (
	"context"
	"flag"
	"log"
	"os"

	enginecmd "github.com/louisbranch/wrathforge/internal/cmd/engine"
	entrypoint "github.com/louisbranch/wrathforge/internal/platform/cmd"
)

// main serves the rules engine over gRPC.
func main() {
	cfg, err := enginecmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	entrypoint.Main(entrypoint.ServiceEngine, func(ctx context.Context) error {
		return enginecmd.Run(ctx, cfg)
	})
}
