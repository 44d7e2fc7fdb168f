package deliverables

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
)

// RowFilter selects die rows with a boolean expr-lang expression. Every
// header of the marker row is a variable; headers that are not identifiers
// are reachable as row["END TEST NO."]. Numeric cells are numbers, blank
// cells are nil.
type RowFilter struct {
	source  string
	program *vm.Program
}

// NewRowFilter compiles expression. An empty expression yields a nil filter
// that matches every row.
func NewRowFilter(expression string) (*RowFilter, error) {
	expression = strings.TrimSpace(expression)
	if expression == "" {
		return nil, nil
	}
	program, err := expr.Compile(expression, expr.AsBool(), expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("compile filter %q: %w", expression, err)
	}
	return &RowFilter{source: expression, program: program}, nil
}

// String returns the source expression.
func (f *RowFilter) String() string {
	if f == nil {
		return ""
	}
	return f.source
}

// Match evaluates the filter against one row of cells aligned with headers.
func (f *RowFilter) Match(headers, cells []string) (bool, error) {
	if f == nil {
		return true, nil
	}
	row := make(map[string]any, len(headers))
	env := make(map[string]any, len(headers)+1)
	for i, h := range headers {
		h = strings.TrimSpace(h)
		if h == "" {
			continue
		}
		var v any
		if i < len(cells) {
			v = typedValue(strings.TrimSpace(cells[i]))
		}
		row[h] = v
		env[h] = v
	}
	env["row"] = row
	out, err := expr.Run(f.program, env)
	if err != nil {
		return false, fmt.Errorf("evaluate filter %q: %w", f.source, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("filter %q evaluated to %T, expected bool", f.source, out)
	}
	return b, nil
}
