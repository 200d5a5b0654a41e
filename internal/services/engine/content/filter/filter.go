// Package filter parses AIP-160 filter strings for catalog listings and
// evaluates them against catalog entries.
package filter

import (
	"fmt"
	"strings"

	"go.einride.tech/aip/filtering"
	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

// FieldType is the declared type of a filterable field.
type FieldType string

const (
	FieldString FieldType = "string"
	FieldInt    FieldType = "int"
	FieldBool   FieldType = "bool"
)

// Fields declares the filterable fields of one catalog.
type Fields map[string]FieldType

// Resolver returns the value of a field for one entry.
type Resolver func(name string) (any, bool)

// Filter is a checked filter expression. The zero Filter matches everything.
type Filter struct {
	expr *expr.Expr
}

// Parse checks filterStr against fields. A blank string yields a Filter
// that matches every entry.
func Parse(filterStr string, fields Fields) (Filter, error) {
	if strings.TrimSpace(filterStr) == "" {
		return Filter{}, nil
	}
	decls, err := declarations(fields)
	if err != nil {
		return Filter{}, err
	}
	parsed, err := filtering.ParseFilterString(filterStr, decls)
	if err != nil {
		return Filter{}, fmt.Errorf("parse filter: %w", err)
	}
	return Filter{expr: parsed.CheckedExpr.GetExpr()}, nil
}

// Match reports whether the entry behind resolve satisfies f.
func (f Filter) Match(resolve Resolver) (bool, error) {
	return evaluate(f.expr, resolve)
}

// Empty reports whether f matches everything.
func (f Filter) Empty() bool {
	return f.expr == nil
}

func declarations(fields Fields) (*filtering.Declarations, error) {
	decls := []filtering.DeclarationOption{filtering.DeclareStandardFunctions()}
	for name, kind := range fields {
		switch kind {
		case FieldString:
			decls = append(decls, filtering.DeclareIdent(name, filtering.TypeString))
		case FieldInt:
			decls = append(decls, filtering.DeclareIdent(name, filtering.TypeInt))
		case FieldBool:
			decls = append(decls, filtering.DeclareIdent(name, filtering.TypeBool))
		default:
			return nil, fmt.Errorf("unsupported field type for %s", name)
		}
	}
	return filtering.NewDeclarations(decls...)
}
