package filter

import (
	"cmp"
	"fmt"
	"strings"

	expr "google.golang.org/genproto/googleapis/api/expr/v1alpha1"
)

func evaluate(e *expr.Expr, resolve Resolver) (bool, error) {
	if e == nil {
		return true, nil
	}
	switch kind := e.ExprKind.(type) {
	case *expr.Expr_CallExpr:
		return evalCall(kind.CallExpr, resolve)
	case *expr.Expr_IdentExpr:
		// A bare boolean field, as in `required`.
		v, ok := resolve(kind.IdentExpr.GetName())
		if !ok {
			return false, fmt.Errorf("unknown field: %s", kind.IdentExpr.GetName())
		}
		b, ok := v.(bool)
		if !ok {
			return false, fmt.Errorf("field %s is not a bool", kind.IdentExpr.GetName())
		}
		return b, nil
	default:
		return false, fmt.Errorf("unsupported expression type: %T", kind)
	}
}

func evalCall(call *expr.Expr_Call, resolve Resolver) (bool, error) {
	switch call.GetFunction() {
	case "AND", "_&&_":
		return evalLogical(call.GetArgs(), resolve, true)
	case "OR", "_||_":
		return evalLogical(call.GetArgs(), resolve, false)
	case "NOT", "_!_":
		if len(call.GetArgs()) != 1 {
			return false, fmt.Errorf("NOT requires 1 argument")
		}
		v, err := evaluate(call.GetArgs()[0], resolve)
		return !v, err
	case ":":
		return evalHas(call.GetArgs(), resolve)
	case "=", "!=", "<", "<=", ">", ">=":
		return evalCompare(call.GetArgs(), resolve, call.GetFunction())
	default:
		return false, fmt.Errorf("unsupported function: %s", call.GetFunction())
	}
}

// evalLogical short-circuits: AND stops at the first false, OR at the first
// true.
func evalLogical(args []*expr.Expr, resolve Resolver, and bool) (bool, error) {
	if len(args) != 2 {
		return false, fmt.Errorf("logical operator requires 2 arguments")
	}
	left, err := evaluate(args[0], resolve)
	if err != nil {
		return false, err
	}
	if left != and {
		return left, nil
	}
	return evaluate(args[1], resolve)
}

// evalHas implements `field:"text"` as a case-insensitive substring match.
func evalHas(args []*expr.Expr, resolve Resolver) (bool, error) {
	field, needle, err := operands(args, resolve)
	if err != nil {
		return false, err
	}
	s, ok1 := field.(string)
	sub, ok2 := needle.(string)
	if !ok1 || !ok2 {
		return false, fmt.Errorf("':' requires string operands")
	}
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub)), nil
}

func evalCompare(args []*expr.Expr, resolve Resolver, op string) (bool, error) {
	left, right, err := operands(args, resolve)
	if err != nil {
		return false, err
	}
	c, err := compareValues(left, right)
	if err != nil {
		return false, err
	}
	switch op {
	case "=":
		return c == 0, nil
	case "!=":
		return c != 0, nil
	case "<":
		return c < 0, nil
	case "<=":
		return c <= 0, nil
	case ">":
		return c > 0, nil
	default:
		return c >= 0, nil
	}
}

func operands(args []*expr.Expr, resolve Resolver) (any, any, error) {
	if len(args) != 2 {
		return nil, nil, fmt.Errorf("comparison requires 2 arguments")
	}
	ident, ok := args[0].ExprKind.(*expr.Expr_IdentExpr)
	if !ok {
		return nil, nil, fmt.Errorf("expected identifier, got %T", args[0].ExprKind)
	}
	name := ident.IdentExpr.GetName()
	left, ok := resolve(name)
	if !ok {
		return nil, nil, fmt.Errorf("unknown field: %s", name)
	}
	constant, ok := args[1].ExprKind.(*expr.Expr_ConstExpr)
	if !ok {
		return nil, nil, fmt.Errorf("expected constant, got %T", args[1].ExprKind)
	}
	right, err := constValue(constant.ConstExpr)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

func constValue(c *expr.Constant) (any, error) {
	switch kind := c.GetConstantKind().(type) {
	case *expr.Constant_StringValue:
		return kind.StringValue, nil
	case *expr.Constant_Int64Value:
		return kind.Int64Value, nil
	case *expr.Constant_Uint64Value:
		return kind.Uint64Value, nil
	case *expr.Constant_DoubleValue:
		return kind.DoubleValue, nil
	case *expr.Constant_BoolValue:
		return kind.BoolValue, nil
	default:
		return nil, fmt.Errorf("unsupported constant type: %T", kind)
	}
}

func compareValues(left, right any) (int, error) {
	switch l := left.(type) {
	case string:
		r, ok := right.(string)
		if !ok {
			return 0, fmt.Errorf("type mismatch: string vs %T", right)
		}
		return strings.Compare(l, r), nil
	case bool:
		r, ok := right.(bool)
		if !ok {
			return 0, fmt.Errorf("type mismatch: bool vs %T", right)
		}
		switch {
		case l == r:
			return 0, nil
		case !l:
			return -1, nil
		default:
			return 1, nil
		}
	}
	l, ok := number(left)
	if !ok {
		return 0, fmt.Errorf("unsupported value type: %T", left)
	}
	r, ok := number(right)
	if !ok {
		return 0, fmt.Errorf("type mismatch: number vs %T", right)
	}
	return cmp.Compare(l, r), nil
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
