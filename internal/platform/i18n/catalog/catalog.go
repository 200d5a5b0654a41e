// Package catalog loads the localized message catalogs embedded in the
// binary and registers them with golang.org/x/text/message.
//
// Catalogs live at locales/<locale>/<namespace>.yaml. Each file declares its
// locale and namespace and a flat map of keys to values:
//
//	locale: "pt-BR"
//	namespace: "dice"
//	messages:
//	  "dice.difficulty.hard": "Difícil"
//
// Keys are global within a locale, so two namespaces cannot define the same
// key.
package catalog

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the locale every lookup falls back to.
const BaseLocale = "en-US"

//go:embed locales/*/*.yaml
var embedded embed.FS

var defaultBundle = mustLoadDefault()

// Default returns the embedded bundle. Its messages are registered with
// message.DefaultCatalog when the package is initialized.
func Default() *Bundle {
	return defaultBundle
}

type locale struct {
	namespaces map[string]map[string]string
	messages   map[string]string
}

// Bundle holds the messages of every locale.
type Bundle struct {
	locales map[string]*locale
}

// LoadEmbedded loads the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embedded)
}

// LoadFromFS loads every locales/*/*.yaml file in fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, "locales/*/*.yaml")
	if err != nil {
		return nil, fmt.Errorf("glob catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	sort.Strings(paths)

	b := &Bundle{locales: map[string]*locale{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		parsed, err := parse(data)
		if err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, parsed); err != nil {
			return nil, err
		}
	}
	if !b.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is missing", BaseLocale)
	}
	return b, nil
}

func (b *Bundle) add(p string, f file) error {
	dirLocale := path.Base(path.Dir(p))
	fileNamespace := strings.TrimSuffix(path.Base(p), path.Ext(p))
	if f.Locale != dirLocale {
		return fmt.Errorf("catalog %s: locale %q does not match directory %q", p, f.Locale, dirLocale)
	}
	if f.Namespace != fileNamespace {
		return fmt.Errorf("catalog %s: namespace %q does not match file name %q", p, f.Namespace, fileNamespace)
	}

	loc, ok := b.locales[f.Locale]
	if !ok {
		loc = &locale{namespaces: map[string]map[string]string{}, messages: map[string]string{}}
		b.locales[f.Locale] = loc
	}
	if _, exists := loc.namespaces[f.Namespace]; exists {
		return fmt.Errorf("catalog %s: namespace %q defined twice for %s", p, f.Namespace, f.Locale)
	}
	ns := make(map[string]string, len(f.Messages))
	for key, value := range f.Messages {
		if _, exists := loc.messages[key]; exists {
			return fmt.Errorf("catalog %s: duplicate key %q in %s", p, key, f.Locale)
		}
		loc.messages[key] = value
		ns[key] = value
	}
	loc.namespaces[f.Namespace] = ns
	return nil
}

// Register installs every message into message.DefaultCatalog under its
// locale tag and the tag's base language.
func (b *Bundle) Register() error {
	for _, name := range b.Locales() {
		tag, err := language.Parse(name)
		if err != nil {
			return fmt.Errorf("parse locale %q: %w", name, err)
		}
		tags := []language.Tag{tag}
		if base, conf := tag.Base(); conf != language.No {
			if baseTag, err := language.Parse(base.String()); err == nil && baseTag.String() != tag.String() {
				tags = append(tags, baseTag)
			}
		}
		for key, value := range b.locales[name].messages {
			for _, t := range tags {
				if err := message.SetString(t, key, value); err != nil {
					return fmt.Errorf("register %s %q: %w", name, key, err)
				}
			}
		}
	}
	return nil
}

// HasLocale reports whether the bundle defines name.
func (b *Bundle) HasLocale(name string) bool {
	if b == nil {
		return false
	}
	_, ok := b.locales[strings.TrimSpace(name)]
	return ok
}

// Locales returns the locale names, sorted.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	out := make([]string, 0, len(b.locales))
	for name := range b.locales {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Message returns the message for key in name, falling back to BaseLocale.
func (b *Bundle) Message(name, key string) (string, bool) {
	if b == nil {
		return "", false
	}
	for _, candidate := range []string{strings.TrimSpace(name), BaseLocale} {
		if loc, ok := b.locales[candidate]; ok {
			if value, ok := loc.messages[key]; ok {
				return value, true
			}
		}
	}
	return "", false
}

// Namespace returns a copy of one namespace, falling back to BaseLocale,
// and the locale that provided it.
func (b *Bundle) Namespace(name, namespace string) (string, map[string]string) {
	if b == nil {
		return BaseLocale, map[string]string{}
	}
	for _, candidate := range []string{strings.TrimSpace(name), BaseLocale} {
		loc, ok := b.locales[candidate]
		if !ok {
			continue
		}
		if ns, ok := loc.namespaces[namespace]; ok {
			out := make(map[string]string, len(ns))
			for k, v := range ns {
				out[k] = v
			}
			return candidate, out
		}
	}
	return BaseLocale, map[string]string{}
}

func mustLoadDefault() *Bundle {
	b, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := b.Register(); err != nil {
		panic(err)
	}
	return b
}

type file struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

// parse decodes one catalog file. Unknown top-level fields and duplicate
// keys within the file are rejected.
func parse(data []byte) (file, error) {
	var f file
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return file{}, err
	}
	switch {
	case f.Locale == "":
		return file{}, fmt.Errorf("missing locale")
	case f.Namespace == "":
		return file{}, fmt.Errorf("missing namespace")
	case len(f.Messages) == 0:
		return file{}, fmt.Errorf("missing messages")
	}
	for key := range f.Messages {
		if strings.TrimSpace(key) == "" {
			return file{}, fmt.Errorf("blank key")
		}
	}
	return f, nil
}
