package catalog

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	for _, locale := range []string{BaseLocale, "pt-BR"} {
		if !bundle.HasLocale(locale) {
			t.Errorf("expected locale %s", locale)
		}
	}
	if _, ns := bundle.Namespace("en-US", "dice"); len(ns) == 0 {
		t.Error("expected en-US dice namespace")
	}
}

func TestEveryLocaleDefinesBaseKeys(t *testing.T) {
	bundle := Default()
	for _, namespace := range []string{"dice", "errors"} {
		_, base := bundle.Namespace(BaseLocale, namespace)
		for _, locale := range bundle.Locales() {
			resolved, ns := bundle.Namespace(locale, namespace)
			if resolved != locale {
				t.Errorf("%s has no %s namespace", locale, namespace)
				continue
			}
			for key := range base {
				if _, ok := ns[key]; !ok {
					t.Errorf("%s/%s is missing %q", locale, namespace, key)
				}
			}
		}
	}
}

func TestMessageFallsBackToBaseLocale(t *testing.T) {
	got, ok := Default().Message("fr-FR", "dice.difficulty.hard")
	if !ok || got != "Hard" {
		t.Errorf("Message = %q, %v", got, ok)
	}
	got, ok = Default().Message("pt-BR", "dice.difficulty.hard")
	if !ok || got != "Difícil" {
		t.Errorf("Message pt-BR = %q, %v", got, ok)
	}
	if _, ok := Default().Message("pt-BR", "missing.key"); ok {
		t.Error("expected missing key")
	}
}

func TestRegisterInstallsPrinterMessages(t *testing.T) {
	Default()
	p := message.NewPrinter(language.MustParse("pt"))
	if got := p.Sprintf("dice.difficulty.easy"); got != "Fácil" {
		t.Errorf("pt printer = %q", got)
	}
}

func TestLoadFromFSRejectsDuplicateKeysAcrossNamespaces(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/dice.yaml"), `locale: "en-US"
namespace: "dice"
messages:
  "a.key": "a"
`)
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/errors.yaml"), `locale: "en-US"
namespace: "errors"
messages:
  "a.key": "b"
`)
	if _, err := LoadFromFS(os.DirFS(dir)); err == nil {
		t.Fatal("expected duplicate key error")
	}
}

func TestLoadFromFSRejectsMismatchedLocale(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/en-US/dice.yaml"), `locale: "pt-BR"
namespace: "dice"
messages:
  "a.key": "a"
`)
	if _, err := LoadFromFS(os.DirFS(dir)); err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestLoadFromFSRequiresBaseLocale(t *testing.T) {
	dir := t.TempDir()
	mustWriteFile(t, filepath.Join(dir, "locales/pt-BR/dice.yaml"), `locale: "pt-BR"
namespace: "dice"
messages:
  "a.key": "a"
`)
	if _, err := LoadFromFS(os.DirFS(dir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestParseRejectsMalformedEntries(t *testing.T) {
	tests := map[string]string{
		"duplicate key":    "locale: \"en-US\"\nnamespace: \"x\"\nmessages:\n  \"a\": \"b\"\n  \"a\": \"c\"\n",
		"tab indentation":  "locale: \"en-US\"\nnamespace: \"x\"\nmessages:\n\t\"a\": \"b\"\n",
		"bad indentation":  "locale: \"en-US\"\nnamespace: \"x\"\nmessages:\n  \"a\": \"b\"\n \"c\": \"d\"\n",
		"no messages":      "locale: \"en-US\"\nnamespace: \"x\"\nmessages:\n",
		"missing locale":   "namespace: \"x\"\nmessages:\n  \"a\": \"b\"\n",
		"unknown field":    "locale: \"en-US\"\nnamespace: \"x\"\nstray: 1\nmessages:\n  \"a\": \"b\"\n",
		"messages as list": "locale: \"en-US\"\nnamespace: \"x\"\nmessages:\n  - \"a\"\n",
		"blank key":        "locale: \"en-US\"\nnamespace: \"x\"\nmessages:\n  \" \": \"b\"\n",
	}
	for name, data := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parse([]byte(data)); err == nil {
				t.Fatal("expected parse error")
			}
		})
	}
}

func TestParseAcceptsPlainYAMLKeys(t *testing.T) {
	f, err := parse([]byte("locale: en-US\nnamespace: dice\nmessages:\n  dice.hard: Hard # trailing comment\n  \"dice.easy\": 'Easy: 1'\n"))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := map[string]string{"dice.hard": "Hard", "dice.easy": "Easy: 1"}
	if !reflect.DeepEqual(f.Messages, want) {
		t.Errorf("messages = %v, want %v", f.Messages, want)
	}
	if f.Locale != "en-US" || f.Namespace != "dice" {
		t.Errorf("header = %q/%q", f.Locale, f.Namespace)
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}
