package formula

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"github.com/Shopify/go-lua"
)

var (
	// ErrEmpty indicates a blank formula.
	ErrEmpty = errors.New("formula is empty")
	// ErrInvalidCharacter indicates a character outside the expression grammar.
	ErrInvalidCharacter = errors.New("invalid character")
	// ErrUnknownIdentifier indicates a name that is neither a variable nor a function.
	ErrUnknownIdentifier = errors.New("unknown identifier")
	// ErrSyntax indicates a malformed expression.
	ErrSyntax = errors.New("syntax error")
	// ErrEvaluation indicates a runtime failure while evaluating.
	ErrEvaluation = errors.New("evaluation failed")
)

// Error reports a formula that failed to parse or evaluate.
type Error struct {
	Formula string
	Err     error
}

func (e *Error) Error() string {
	return fmt.Sprintf("formula %q: %v", e.Formula, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Variables maps semantic names to their current numeric value.
type Variables map[string]float64

// Clone returns an independent copy of v.
func (v Variables) Clone() Variables {
	out := make(Variables, len(v))
	for name, value := range v {
		out[name] = value
	}
	return out
}

// functionNames maps the formula-level function names to the globals
// registered in the interpreter.
var functionNames = map[string]string{
	"floor": "__floor",
	"ceil":  "__ceil",
	"min":   "__min",
	"max":   "__max",
}

type tokenKind int

const (
	tokenNumber tokenKind = iota
	tokenIdent
	tokenOperator
)

type token struct {
	kind  tokenKind
	text  string
	start int
}

// Evaluate computes formula with vars substituted for their values.
//
// Variable names are replaced on token boundaries only, so a variable named
// "strength" never rewrites part of "strengthMod". Any identifier left after
// substitution must be one of floor, ceil, min or max.
func Evaluate(formula string, vars Variables) (float64, error) {
	expr, err := Compile(formula, vars)
	if err != nil {
		return 0, err
	}
	value, err := run(expr)
	if err != nil {
		return 0, &Error{Formula: formula, Err: err}
	}
	return value, nil
}

// Compile validates formula and returns the substituted expression that will
// be handed to the interpreter.
func Compile(formula string, vars Variables) (string, error) {
	if strings.TrimSpace(formula) == "" {
		return "", &Error{Formula: formula, Err: ErrEmpty}
	}
	tokens, err := tokenize(formula)
	if err != nil {
		return "", &Error{Formula: formula, Err: err}
	}

	parts := make([]string, 0, len(tokens))
	for i, tok := range tokens {
		switch tok.kind {
		case tokenNumber, tokenOperator:
			parts = append(parts, tok.text)
		case tokenIdent:
			if value, ok := vars[tok.text]; ok {
				parts = append(parts, literal(value))
				continue
			}
			native, ok := functionNames[tok.text]
			if !ok || !followedByCall(tokens, i) {
				return "", &Error{Formula: formula, Err: fmt.Errorf("%w %q", ErrUnknownIdentifier, tok.text)}
			}
			parts = append(parts, native)
		}
	}
	return strings.Join(parts, " "), nil
}

// Identifiers lists the distinct non-function identifiers in formula, in
// order of first appearance.
func Identifiers(formula string) ([]string, error) {
	tokens, err := tokenize(formula)
	if err != nil {
		return nil, &Error{Formula: formula, Err: err}
	}
	seen := make(map[string]struct{})
	var names []string
	for i, tok := range tokens {
		if tok.kind != tokenIdent {
			continue
		}
		if _, fn := functionNames[tok.text]; fn && followedByCall(tokens, i) {
			continue
		}
		if _, ok := seen[tok.text]; ok {
			continue
		}
		seen[tok.text] = struct{}{}
		names = append(names, tok.text)
	}
	return names, nil
}

func followedByCall(tokens []token, i int) bool {
	return i+1 < len(tokens) && tokens[i+1].kind == tokenOperator && tokens[i+1].text == "("
}

func tokenize(formula string) ([]token, error) {
	runes := []rune(formula)
	var tokens []token
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case r >= '0' && r <= '9' || r == '.':
			start := i
			dots := 0
			for i < len(runes) && (runes[i] >= '0' && runes[i] <= '9' || runes[i] == '.') {
				if runes[i] == '.' {
					dots++
				}
				i++
			}
			text := string(runes[start:i])
			if dots > 1 || text == "." {
				return nil, fmt.Errorf("%w: malformed number %q at %d", ErrSyntax, text, start)
			}
			tokens = append(tokens, token{kind: tokenNumber, text: text, start: start})
		case isIdentStart(r):
			start := i
			for i < len(runes) && isIdentPart(runes[i]) {
				i++
			}
			tokens = append(tokens, token{kind: tokenIdent, text: string(runes[start:i]), start: start})
		case strings.ContainsRune("+-*/(),", r):
			tokens = append(tokens, token{kind: tokenOperator, text: string(r), start: i})
			i++
		default:
			return nil, fmt.Errorf("%w %q at %d", ErrInvalidCharacter, r, i)
		}
	}
	return tokens, nil
}

func isIdentStart(r rune) bool {
	return r == '_' || r < unicode.MaxASCII && unicode.IsLetter(r)
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || r >= '0' && r <= '9'
}

func literal(value float64) string {
	switch {
	case math.IsNaN(value):
		return "(0/0)"
	case math.IsInf(value, 1):
		return "(1/0)"
	case math.IsInf(value, -1):
		return "(-1/0)"
	case value < 0:
		return "(" + strconv.FormatFloat(value, 'g', -1, 64) + ")"
	default:
		return strconv.FormatFloat(value, 'g', -1, 64)
	}
}

func run(expr string) (float64, error) {
	state := lua.NewState()
	registerFunctions(state)

	if err := lua.LoadString(state, "return ("+expr+")"); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrSyntax, err)
	}
	if err := state.ProtectedCall(0, 1, 0); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrEvaluation, err)
	}
	if state.TypeOf(-1) != lua.TypeNumber {
		return 0, fmt.Errorf("%w: result is %s, not a number", ErrEvaluation, lua.TypeNameOf(state, -1))
	}
	value, _ := state.ToNumber(-1)
	state.Pop(1)
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, fmt.Errorf("%w: result %v is not finite", ErrEvaluation, value)
	}
	return value, nil
}

func registerFunctions(state *lua.State) {
	for _, fn := range []struct {
		name string
		fn   lua.Function
	}{
		{"__floor", unary(math.Floor)},
		{"__ceil", unary(math.Ceil)},
		{"__min", reducer("min", math.Min)},
		{"__max", reducer("max", math.Max)},
	} {
		state.PushGoFunction(fn.fn)
		state.SetGlobal(fn.name)
	}
}

func unary(op func(float64) float64) lua.Function {
	return func(state *lua.State) int {
		state.PushNumber(op(lua.CheckNumber(state, 1)))
		return 1
	}
}

func reducer(name string, op func(a, b float64) float64) lua.Function {
	return func(state *lua.State) int {
		n := state.Top()
		if n == 0 {
			lua.Errorf(state, "%s expects at least one argument", name)
			return 0
		}
		acc := lua.CheckNumber(state, 1)
		for i := 2; i <= n; i++ {
			acc = op(acc, lua.CheckNumber(state, i))
		}
		state.PushNumber(acc)
		return 1
	}
}
