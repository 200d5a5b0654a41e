package main

import (
	"context"
	"flag"
	"log"
	"os"

	mcpcmd "github.com/louisbranch/wrathforge/internal/cmd/mcp"
	entrypoint "github.com/louisbranch/wrathforge/internal/platform/cmd"
)

// main starts the MCP server on stdio or HTTP.
func main() {
	cfg, err := mcpcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		log.Fatalf("parse flags: %v", err)
	}
	entrypoint.Main(entrypoint.ServiceMCP, func(ctx context.Context) error {
		return mcpcmd.Run(ctx, cfg)
	})
}
