package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lumenboard/lumenboard/internal/logging"
)

// exprPattern matches `path operator literal` predicates such as
// "stocks.AAPL.change < 0".
var exprPattern = regexp.MustCompile(`^\s*([\w.]+)\s*([<>=!]+)\s*(.+?)\s*$`)

// Evaluator resolves dot-separated paths against a nested data context
// and evaluates simple relational predicates over it. The context is
// treated as read-only.
type Evaluator struct {
	data   map[string]interface{}
	logger logging.Logger
}

func NewEvaluator(data map[string]interface{}, logger logging.Logger) *Evaluator {
	if logger == nil {
		logger = logging.NoopLogger{}
	}
	return &Evaluator{data: data, logger: logger}
}

// Value walks the context one dot-separated segment at a time. The second
// return is false when any segment is absent or an intermediate value is
// not a nested mapping.
func (e *Evaluator) Value(path string) (interface{}, bool) {
	var current interface{} = e.data
	for _, part := range strings.Split(path, ".") {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok || current == nil {
			return nil, false
		}
	}
	return current, true
}

// Evaluate runs one predicate against the context. Malformed predicates,
// absent paths and incomparable operand types all evaluate to false; the
// first and last are logged since they usually indicate a layout bug.
func (e *Evaluator) Evaluate(expr string) bool {
	m := exprPattern.FindStringSubmatch(expr)
	if m == nil {
		e.logger.Errorf("eval", "invalid expression: %q", expr)
		return false
	}
	path, op, literal := m[1], m[2], m[3]

	value, ok := e.Value(path)
	if !ok {
		return false
	}

	result, err := compare(value, op, coerceLiteral(literal))
	if err != nil {
		e.logger.Errorf("eval", "%q: %v", expr, err)
		return false
	}
	return result
}

// coerceLiteral turns the right-hand side text into a typed value:
// true/false, then float when it contains a dot, then int, otherwise a
// bare string with surrounding quotes stripped.
func coerceLiteral(s string) interface{} {
	t := strings.TrimSpace(s)
	switch strings.ToLower(t) {
	case "true":
		return true
	case "false":
		return false
	}
	if strings.Contains(t, ".") {
		if f, err := strconv.ParseFloat(t, 64); err == nil {
			return f
		}
	} else if i, err := strconv.Atoi(t); err == nil {
		return i
	}
	return strings.Trim(t, `'"`)
}

func compare(left interface{}, op string, right interface{}) (bool, error) {
	if lf, lok := toFloat(left); lok {
		rf, rok := toFloat(right)
		if !rok {
			return false, mismatch(left, op, right)
		}
		return ordered(lf, op, rf)
	}
	if ls, ok := left.(string); ok {
		rs, rok := right.(string)
		if !rok {
			return false, mismatch(left, op, right)
		}
		return ordered(ls, op, rs)
	}
	if lb, ok := left.(bool); ok {
		rb, rok := right.(bool)
		if !rok {
			return false, mismatch(left, op, right)
		}
		switch op {
		case "==":
			return lb == rb, nil
		case "!=":
			return lb != rb, nil
		}
		return false, mismatch(left, op, right)
	}
	return false, mismatch(left, op, right)
}

func ordered[T interface{ ~string | ~float64 }](left T, op string, right T) (bool, error) {
	switch op {
	case "<":
		return left < right, nil
	case ">":
		return left > right, nil
	case "<=":
		return left <= right, nil
	case ">=":
		return left >= right, nil
	case "==":
		return left == right, nil
	case "!=":
		return left != right, nil
	}
	return false, mismatch(left, op, right)
}

func mismatch(left interface{}, op string, right interface{}) error {
	return fmt.Errorf("cannot compare %T %s %T", left, op, right)
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
