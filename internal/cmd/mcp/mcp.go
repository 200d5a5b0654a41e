// Package mcp parses MCP command flags and selects the transport and engine.
package mcp

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/wrathforge/internal/platform/cmd"
	mcpservice "github.com/louisbranch/wrathforge/internal/services/mcp/service"
)

// Config holds MCP command configuration.
type Config struct {
	EngineAddr   string `env:"WRATHFORGE_ENGINE_ADDR"         envDefault:"localhost:8090"`
	Engine       string `env:"WRATHFORGE_MCP_ENGINE"          envDefault:"remote"`
	DBPath       string `env:"WRATHFORGE_MCP_DB_PATH"         envDefault:"data/wrathforge.db"`
	Transport    string `env:"WRATHFORGE_MCP_TRANSPORT"       envDefault:"stdio"`
	HTTPAddr     string `env:"WRATHFORGE_MCP_HTTP_ADDR"       envDefault:"localhost:8091"`
	HTTPMaxConns int    `env:"WRATHFORGE_MCP_HTTP_MAX_CONNS"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.EngineAddr, "addr", cfg.EngineAddr, "engine server address")
	fs.StringVar(&cfg.Engine, "engine", cfg.Engine, "Engine mode: remote or local")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "SQLite database of the local engine")
	fs.StringVar(&cfg.Transport, "transport", cfg.Transport, "Transport type: stdio or http")
	fs.StringVar(&cfg.HTTPAddr, "http-addr", cfg.HTTPAddr, "HTTP server address (for HTTP transport)")
	fs.IntVar(&cfg.HTTPMaxConns, "http-max-conns", cfg.HTTPMaxConns, "Maximum concurrent HTTP connections, 0 for no limit")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run starts the MCP protocol adapter.
func Run(ctx context.Context, cfg Config) error {
	return mcpservice.Run(ctx, cfg.serviceConfig())
}

func (cfg Config) serviceConfig() mcpservice.Config {
	return mcpservice.Config{
		Transport:    mcpservice.TransportKind(cfg.Transport),
		HTTPAddr:     cfg.HTTPAddr,
		HTTPMaxConns: cfg.HTTPMaxConns,
		Engine:       mcpservice.EngineMode(cfg.Engine),
		EngineAddr:   cfg.EngineAddr,
		DBPath:       cfg.DBPath,
	}
}
