package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/louisbranch/wrathforge/internal/services/engine/content"
	"github.com/louisbranch/wrathforge/internal/services/engine/service"
	"github.com/louisbranch/wrathforge/internal/services/engine/storage/sqlite"
)

// DefaultDBPath is where the engine keeps its database when no path is
// configured.
var DefaultDBPath = filepath.Join("data", "wrathforge.db")

// OpenService opens the sqlite store at dbPath, creating its directory,
// and returns the application service over it with the embedded catalogs.
// The caller closes the store.
func OpenService(dbPath string, opts ...service.Option) (*service.Service, *sqlite.Store, error) {
	path := strings.TrimSpace(dbPath)
	if path == "" {
		path = DefaultDBPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create storage dir: %w", err)
		}
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite store: %w", err)
	}
	registry, err := content.Default()
	if err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("load content: %w", err)
	}
	svc, err := service.New(store, store, registry, opts...)
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return svc, store, nil
}
