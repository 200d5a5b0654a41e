// Package timeouts holds the timeouts shared by the binaries.
package timeouts

import "time"

// GRPCDial caps the wait when the MCP adapter dials the engine.
const GRPCDial = 2 * time.Second

// GRPCRequest caps one engine call made on behalf of an MCP tool.
const GRPCRequest = 5 * time.Second

// ReadHeader limits how long the MCP HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits graceful shutdown of the gRPC and HTTP servers.
const Shutdown = 5 * time.Second
