// Package engine parses engine command flags and starts the gRPC server.
package engine

import (
	"context"
	"flag"

	entrypoint "github.com/louisbranch/wrathforge/internal/platform/cmd"
	"github.com/louisbranch/wrathforge/internal/services/engine/app"
)

// Config holds engine command configuration.
type Config struct {
	Addr   string `env:"WRATHFORGE_ENGINE_ADDR"    envDefault:"localhost:8090"`
	DBPath string `env:"WRATHFORGE_ENGINE_DB_PATH" envDefault:"data/wrathforge.db"`
}

// ParseConfig parses environment and flags into a Config.
func ParseConfig(fs *flag.FlagSet, args []string) (Config, error) {
	var cfg Config
	if err := entrypoint.ParseConfig(&cfg); err != nil {
		return Config{}, err
	}
	fs.StringVar(&cfg.Addr, "addr", cfg.Addr, "The engine gRPC listen address")
	fs.StringVar(&cfg.DBPath, "db-path", cfg.DBPath, "Path to the engine SQLite database")
	if err := entrypoint.ParseArgs(fs, args); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Run serves the engine until ctx ends.
func Run(ctx context.Context, cfg Config) error {
	return app.Run(ctx, app.Config{Addr: cfg.Addr, DBPath: cfg.DBPath})
}
