package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"

	enginegrpc "github.com/louisbranch/wrathforge/internal/services/engine/api/grpc/engine"
)

// healthInterval is how often a remote engine is probed while serving.
const healthInterval = 30 * time.Second

// Run is the service entrypoint for MCP and blocks until context
// cancellation.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}
	if cfg.Transport != TransportStdio && cfg.Transport != TransportHTTP {
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}

	server, err := New(ctx, cfg)
	if err != nil {
		return err
	}

	healthCtx, healthCancel := context.WithCancel(ctx)
	defer healthCancel()
	if server.conn != nil {
		go monitorHealth(healthCtx, server.conn)
	}

	switch cfg.Transport {
	case TransportHTTP:
		return server.serveHTTP(ctx, cfg.HTTPAddr, cfg.HTTPMaxConns)
	default:
		return server.Serve(ctx)
	}
}

// Serve runs the MCP server on stdio until it stops or ctx ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport runs the MCP server over transport and releases the
// engine when it stops.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close engine: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close engine: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// monitorHealth probes a remote engine until ctx ends. Failures are logged
// and do not stop the server; tool calls report their own errors.
func monitorHealth(ctx context.Context, conn grpc.ClientConnInterface) {
	if conn == nil {
		return
	}
	client := grpc_health_v1.NewHealthClient(conn)
	ticker := time.NewTicker(healthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			callCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			response, err := client.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: enginegrpc.ServiceName})
			cancel()
			if err != nil {
				log.Printf("engine health check failed: %v", err)
			} else if response.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
				log.Printf("engine health check status: %s", response.GetStatus().String())
			}
		}
	}
}
