// Package i18n renders localized error messages from the "errors" namespace
// of the message catalog.
package i18n

import (
	"strings"
	"sync"
	"text/template"

	i18ncatalog "github.com/louisbranch/wrathforge/internal/platform/i18n/catalog"
)

// Catalog holds the parsed error templates of one locale, keyed by error
// code.
type Catalog struct {
	locale    string
	templates map[string]*template.Template
	raw       map[string]string
}

// catalogs caches one Catalog per resolved locale.
var catalogs sync.Map

// GetCatalog returns the catalog for locale, or the en-US catalog when the
// locale has no error messages.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	if c, ok := catalogs.Load(requested); ok {
		return c.(*Catalog)
	}
	resolved, messages := i18ncatalog.Default().Namespace(requested, "errors")
	c, _ := catalogs.LoadOrStore(resolved, NewCatalog(resolved, messages))
	if resolved != requested {
		catalogs.Store(requested, c)
	}
	return c.(*Catalog)
}

// NewCatalog parses messages as templates over error metadata. A message
// that does not parse is kept as literal text.
func NewCatalog(locale string, messages map[string]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		templates: make(map[string]*template.Template, len(messages)),
		raw:       make(map[string]string, len(messages)),
	}
	for code, text := range messages {
		c.raw[code] = text
		t, err := template.New(code).Option("missingkey=zero").Parse(text)
		if err == nil {
			c.templates[code] = t
		}
	}
	return c
}

// Locale returns the locale the catalog was resolved to.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata. Unknown codes render
// as the code; templates that fail render as their source text.
func (c *Catalog) Format(code string, metadata map[string]string) string {
	text, ok := c.raw[code]
	if !ok {
		return code
	}
	t, ok := c.templates[code]
	if !ok {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var b strings.Builder
	if err := t.Execute(&b, metadata); err != nil {
		return text
	}
	return b.String()
}
