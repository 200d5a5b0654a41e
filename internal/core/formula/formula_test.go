package formula

import (
	"errors"
	"reflect"
	"testing"
)

func TestEvaluate(t *testing.T) {
	vars := Variables{
		"tier":        3,
		"toughness":   5,
		"strength":    4,
		"strengthMod": 10,
		"willpower":   3,
		"penalty":     -2,
	}

	tests := []struct {
		name    string
		formula string
		want    float64
	}{
		{name: "literal", formula: "7", want: 7},
		{name: "decimal literal", formula: "2.5 * 2", want: 5},
		{name: "sum of variables", formula: "tier + toughness", want: 8},
		{name: "precedence", formula: "1 + strength * 2", want: 9},
		{name: "parentheses", formula: "(1 + strength) * 2", want: 10},
		{name: "floor", formula: "floor(willpower / 2)", want: 1},
		{name: "ceil", formula: "ceil(willpower / 2)", want: 2},
		{name: "variadic min", formula: "min(tier, toughness, strength)", want: 3},
		{name: "variadic max", formula: "max(1, floor(willpower / 2))", want: 1},
		{name: "token boundary", formula: "strengthMod + strength", want: 14},
		{name: "negative variable", formula: "tier - penalty", want: 5},
		{name: "double minus is not a comment", formula: "5 --3", want: 8},
		{name: "unary minus", formula: "-tier + 10", want: 7},
		{name: "float division", formula: "7 / 2", want: 3.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Evaluate(tt.formula, vars)
			if err != nil {
				t.Fatalf("Evaluate(%q) error: %v", tt.formula, err)
			}
			if got != tt.want {
				t.Errorf("Evaluate(%q) = %v, want %v", tt.formula, got, tt.want)
			}
		})
	}
}

func TestEvaluateErrors(t *testing.T) {
	vars := Variables{"strength": 4}

	tests := []struct {
		name    string
		formula string
		want    error
	}{
		{name: "empty", formula: "  ", want: ErrEmpty},
		{name: "unknown identifier", formula: "agility + 1", want: ErrUnknownIdentifier},
		{name: "partial name is not substituted", formula: "strengthMod", want: ErrUnknownIdentifier},
		{name: "unknown function", formula: "abs(strength)", want: ErrUnknownIdentifier},
		{name: "function without call", formula: "floor + 1", want: ErrUnknownIdentifier},
		{name: "dice notation", formula: "1d3+strength", want: ErrUnknownIdentifier},
		{name: "lua keyword", formula: "strength and 1", want: ErrUnknownIdentifier},
		{name: "library escape", formula: "os.exit()", want: ErrSyntax},
		{name: "string concatenation", formula: "1..2", want: ErrSyntax},
		{name: "quotes", formula: "'a'", want: ErrInvalidCharacter},
		{name: "exponent operator", formula: "strength ^ 2", want: ErrInvalidCharacter},
		{name: "brackets", formula: "strength[1]", want: ErrInvalidCharacter},
		{name: "unbalanced", formula: "(strength + 1", want: ErrSyntax},
		{name: "dangling operator", formula: "strength +", want: ErrSyntax},
		{name: "empty min", formula: "min()", want: ErrEvaluation},
		{name: "division by zero", formula: "1 / 0", want: ErrEvaluation},
		{name: "variable over zero", formula: "strength / 0", want: ErrEvaluation},
		{name: "zero over zero", formula: "0 / 0", want: ErrEvaluation},
		{name: "negative infinity", formula: "-strength / 0", want: ErrEvaluation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Evaluate(tt.formula, vars)
			if err == nil {
				t.Fatalf("Evaluate(%q) expected error", tt.formula)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("Evaluate(%q) error = %v, want %v", tt.formula, err, tt.want)
			}
			var formulaErr *Error
			if !errors.As(err, &formulaErr) {
				t.Fatalf("Evaluate(%q) error %T is not *Error", tt.formula, err)
			}
			if formulaErr.Formula != tt.formula {
				t.Errorf("error formula = %q, want %q", formulaErr.Formula, tt.formula)
			}
		})
	}
}

func TestCompileSubstitutesOnTokenBoundaries(t *testing.T) {
	got, err := Compile("floor(strength/2)+strengthMod", Variables{"strength": 4, "strengthMod": -1})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	want := "__floor ( 4 / 2 ) + (-1)"
	if got != want {
		t.Errorf("Compile = %q, want %q", got, want)
	}
}

func TestIdentifiers(t *testing.T) {
	got, err := Identifiers("max(tier, floor(agility / 2)) + tier")
	if err != nil {
		t.Fatalf("identifiers: %v", err)
	}
	want := []string{"tier", "agility"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Identifiers = %v, want %v", got, want)
	}
}

func TestVariablesClone(t *testing.T) {
	original := Variables{"tier": 1}
	clone := original.Clone()
	clone["tier"] = 2
	if original["tier"] != 1 {
		t.Errorf("clone mutated original: %v", original)
	}
}
