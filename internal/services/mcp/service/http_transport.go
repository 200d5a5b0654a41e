package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/net/netutil"

	"github.com/louisbranch/wrathforge/internal/platform/timeouts"
)

// mcpPath serves the streamable HTTP transport; mcpHealthPath answers
// liveness probes.
const (
	mcpPath       = "/mcp"
	mcpHealthPath = "/mcp/health"
)

// httpHandler routes MCP traffic to the streamable HTTP handler, which
// keeps one session per client.
func (s *Server) httpHandler() http.Handler {
	streamable := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return s.mcpServer
	}, nil)

	mux := http.NewServeMux()
	mux.Handle(mcpPath, streamable)
	mux.HandleFunc(mcpHealthPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	return mux
}

// serveHTTP serves MCP over HTTP on addr until ctx ends, then shuts the
// server down and releases the engine.
func (s *Server) serveHTTP(ctx context.Context, addr string, maxConns int) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if strings.TrimSpace(addr) == "" {
		addr = DefaultHTTPAddr
	}
	defer s.Close()

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", addr, err)
	}
	if maxConns > 0 {
		listener = netutil.LimitListener(listener, maxConns)
	}
	return s.serveHTTPListener(ctx, listener)
}

func (s *Server) serveHTTPListener(ctx context.Context, listener net.Listener) error {
	httpServer := &http.Server{
		Handler:           s.httpHandler(),
		ReadHeaderTimeout: timeouts.ReadHeader,
	}
	log.Printf("MCP HTTP server listening at %v", listener.Addr())

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		log.Printf("Shutting down MCP HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			// Streams still open after the timeout are cut.
			log.Printf("MCP HTTP graceful shutdown: %v", err)
			if err := httpServer.Close(); err != nil {
				return fmt.Errorf("close HTTP server: %w", err)
			}
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("HTTP server error: %w", err)
	}
}
