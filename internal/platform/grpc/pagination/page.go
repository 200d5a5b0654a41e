// Package pagination normalizes list page sizes.
package pagination

// PageSizeConfig bounds a page size.
type PageSizeConfig struct {
	Default int
	Max     int
}

// ClampPageSize applies the default to unset sizes and caps large ones. The
// result is at least 1.
func ClampPageSize(value int, cfg PageSizeConfig) int {
	pageSize := value
	if pageSize <= 0 {
		pageSize = cfg.Default
	}
	if cfg.Max > 0 && pageSize > cfg.Max {
		pageSize = cfg.Max
	}
	return max(pageSize, 1)
}
