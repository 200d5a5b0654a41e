package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"

	"github.com/louisbranch/wrathforge/internal/platform/branding"
	platformgrpc "github.com/louisbranch/wrathforge/internal/platform/grpc"
	"github.com/louisbranch/wrathforge/internal/platform/timeouts"
	enginegrpc "github.com/louisbranch/wrathforge/internal/services/engine/api/grpc/engine"
	"github.com/louisbranch/wrathforge/internal/services/engine/app"
	"github.com/louisbranch/wrathforge/internal/services/mcp/domain"
)

// serverVersion is reported to MCP clients during initialization.
const serverVersion = "0.1.0"

// serverName identifies this MCP server to clients.
var serverName = branding.AppName + " MCP"

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP serves the streamable HTTP transport.
	TransportHTTP TransportKind = "http"
)

// EngineMode selects how the server reaches the engine.
type EngineMode string

const (
	// EngineRemote calls an engine server over gRPC.
	EngineRemote EngineMode = "remote"
	// EngineLocal runs the engine in process against a local database.
	EngineLocal EngineMode = "local"
)

// DefaultHTTPAddr is the HTTP listen address when none is configured.
const DefaultHTTPAddr = "localhost:8091"

// Config configures the MCP server.
type Config struct {
	Transport TransportKind
	// HTTPAddr is the listen address of the HTTP transport.
	HTTPAddr string
	// HTTPMaxConns caps concurrent HTTP connections; zero means no cap.
	HTTPMaxConns int
	Engine       EngineMode
	// EngineAddr is the gRPC address of a remote engine.
	EngineAddr string
	// DBPath is the database of a local engine.
	DBPath string
}

// Server hosts the MCP server and owns the engine connection.
type Server struct {
	mcpServer *mcp.Server
	engine    domain.Engine
	conn      *grpc.ClientConn
	closeFn   func() error
}

// NewWithEngine creates an MCP server with every tool and resource bound to
// engine. The caller keeps ownership of the engine.
func NewWithEngine(engine domain.Engine) (*Server, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		CompletionHandler: completionHandler,
	})
	for _, module := range registrationModules() {
		if err := module.register(mcpServer, engine); err != nil {
			return nil, fmt.Errorf("register MCP module %q: %w", module.name, err)
		}
	}
	return &Server{mcpServer: mcpServer, engine: engine}, nil
}

// New connects to the engine selected by cfg and creates an MCP server for
// it. Close releases the engine.
func New(ctx context.Context, cfg Config) (*Server, error) {
	switch cfg.Engine {
	case "", EngineRemote:
		conn, err := dialEngine(ctx, cfg.EngineAddr)
		if err != nil {
			return nil, err
		}
		s, err := NewWithEngine(enginegrpc.NewClient(conn))
		if err != nil {
			_ = conn.Close()
			return nil, err
		}
		s.conn = conn
		s.closeFn = conn.Close
		return s, nil
	case EngineLocal:
		svc, store, err := app.OpenService(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("open local engine: %w", err)
		}
		s, err := NewWithEngine(svc)
		if err != nil {
			_ = store.Close()
			return nil, err
		}
		s.closeFn = store.Close
		return s, nil
	default:
		return nil, fmt.Errorf("engine mode %q is not supported", cfg.Engine)
	}
}

// Close releases the engine connection or local database.
func (s *Server) Close() error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	closeFn := s.closeFn
	s.closeFn = nil
	s.conn = nil
	return closeFn()
}

// completionHandler returns empty completions; tool arguments are free-form
// identifiers the model reads from catalog_list.
func completionHandler(_ context.Context, _ *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values: []string{},
		},
	}, nil
}

func dialEngine(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("engine address is required")
	}
	logf := func(format string, args ...any) {
		log.Printf("engine %s", fmt.Sprintf(format, args...))
	}
	conn, err := platformgrpc.Connect(ctx, addr, enginegrpc.ServiceName, timeouts.GRPCDial, logf)
	if err != nil {
		var connectErr *platformgrpc.ConnectError
		if errors.As(err, &connectErr) && connectErr.Stage == platformgrpc.ConnectStageClient {
			return nil, fmt.Errorf("connect to engine at %s: %w", addr, connectErr.Err)
		}
		return nil, fmt.Errorf("engine at %s is not serving: %w", addr, err)
	}
	return conn, nil
}
