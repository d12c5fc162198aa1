package dicore

import (
	"fmt"
	"regexp"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`%([\w.-]*)%`)

// recursionState tracks which placeholder names are currently being
// expanded, to detect circular references, and whether recursive expansion
// is enabled at all (a nil *recursionState means "not recursive").
type recursionState struct {
	visited map[string]bool
	order   []string
}

func normalizeRecursive(recursive any) (*recursionState, error) {
	switch v := recursive.(type) {
	case nil:
		return nil, nil
	case bool:
		if !v {
			return nil, nil
		}
		return &recursionState{visited: map[string]bool{}}, nil
	case map[string]bool:
		return &recursionState{visited: v}, nil
	default:
		return nil, fmt.Errorf("dicore: expand: invalid recursive argument %T", recursive)
	}
}

func (s *recursionState) enter(name string) error {
	if s.visited[name] {
		chain := append(append([]string{}, s.order...), name)
		return circularPlaceholderError(chain)
	}
	s.visited[name] = true
	s.order = append(s.order, name)
	return nil
}

func (s *recursionState) leave(name string) {
	delete(s.visited, name)
	s.order = s.order[:len(s.order)-1]
}

// Expand recursively walks arrays, Arguments, and Statements; on a string
// it splits on %name% placeholders and substitutes looked-up values from
// params. recursive is false, true, or a map[string]bool of in-progress
// placeholder names threaded in from a caller that already started a
// recursive expansion (cycle detection keyed by placeholder name).
func Expand(v any, params map[string]any, recursive any) (any, error) {
	state, err := normalizeRecursive(recursive)
	if err != nil {
		return nil, err
	}
	return expandValue(v, params, state)
}

func expandValue(v any, params map[string]any, state *recursionState) (any, error) {
	switch val := v.(type) {
	case string:
		return expandString(val, params, state)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			e, err := expandValue(item, params, state)
			if err != nil {
				return nil, err
			}
			out[i] = e
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			e, err := expandValue(item, params, state)
			if err != nil {
				return nil, err
			}
			out[k] = e
		}
		return out, nil
	case Arguments:
		out := make(Arguments, len(val))
		for i, arg := range val {
			e, err := expandValue(arg.Value, params, state)
			if err != nil {
				return nil, err
			}
			out[i] = Argument{Name: arg.Name, Value: e}
		}
		return out, nil
	case *Statement:
		if val == nil {
			return val, nil
		}
		expandedArgs, err := expandValue(val.Args, params, state)
		if err != nil {
			return nil, err
		}
		return &Statement{Entity: val.Entity, Args: expandedArgs.(Arguments)}, nil
	default:
		return val, nil
	}
}

func expandString(s string, params map[string]any, state *recursionState) (any, error) {
	matches := placeholderPattern.FindAllStringSubmatchIndex(s, -1)
	if len(matches) == 0 {
		return s, nil
	}

	// A single placeholder spanning the whole string returns the raw
	// looked-up value, of any type, rather than a stringified fragment.
	if len(matches) == 1 && matches[0][0] == 0 && matches[0][1] == len(s) {
		name := s[matches[0][2]:matches[0][3]]
		if name == "" {
			return "%", nil
		}
		return lookupPlaceholder(name, params, state)
	}

	acc := &accumulator{}
	pos := 0
	for _, m := range matches {
		start, end := m[0], m[1]
		nameStart, nameEnd := m[2], m[3]
		if start > pos {
			acc.appendLiteral(s[pos:start])
		}
		name := s[nameStart:nameEnd]
		if name == "" {
			acc.appendLiteral("%")
		} else {
			v, err := lookupPlaceholder(name, params, state)
			if err != nil {
				return nil, err
			}
			if err := acc.appendValue(v); err != nil {
				return nil, err
			}
		}
		pos = end
	}
	if pos < len(s) {
		acc.appendLiteral(s[pos:])
	}
	return acc.result(), nil
}

func lookupPlaceholder(name string, params map[string]any, state *recursionState) (any, error) {
	parts := strings.Split(name, ".")
	root := parts[0]

	val, ok := params[root]
	if !ok {
		if name == "parameters" {
			return params, nil
		}
		return nil, parameterPlaceholderMissingError(name)
	}

	cur := val
	for _, part := range parts[1:] {
		switch c := cur.(type) {
		case map[string]any:
			v, ok := c[part]
			if !ok {
				return nil, parameterPlaceholderMissingError(name)
			}
			cur = v
		case DynamicParameter:
			// Keep accumulating index expressions symbolically: the
			// concrete value of this path segment is only known at
			// container runtime.
			cur = NewDynamicParameter(fmt.Sprintf("%s[%s]", c.Expr, phpStringLiteral(part)))
		default:
			return nil, parameterPlaceholderMissingError(name)
		}
	}

	if state == nil {
		return cur, nil
	}
	str, ok := cur.(string)
	if !ok {
		return cur, nil
	}
	if err := state.enter(name); err != nil {
		return nil, err
	}
	defer state.leave(name)
	return expandString(str, params, state)
}

// accumulator builds the concatenation result of expandString, staying a
// plain string for as long as possible and switching to a DynamicParameter
// the first time a non-literal piece needs to be absorbed.
type accumulator struct {
	str string
	dyn *DynamicParameter
}

func (a *accumulator) appendLiteral(s string) {
	if s == "" {
		return
	}
	if a.dyn != nil {
		nd := a.dyn.Concat(s)
		a.dyn = &nd
		return
	}
	a.str += s
}

func (a *accumulator) appendValue(v any) error {
	switch val := v.(type) {
	case DynamicParameter:
		if a.dyn != nil {
			nd := a.dyn.ConcatParam(val)
			a.dyn = &nd
		} else {
			nd := val.ConcatLeft(a.str)
			a.dyn = &nd
			a.str = ""
		}
		return nil
	case string:
		a.appendLiteral(val)
		return nil
	case nil:
		return nil
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		a.appendLiteral(fmt.Sprint(val))
		return nil
	default:
		return nonScalarConcatError(v)
	}
}

func (a *accumulator) result() any {
	if a.dyn != nil {
		return *a.dyn
	}
	return a.str
}

// Escape doubles every "%" and every leading "@" in strings, so a
// user-supplied config literal survives a later Expand/ArgumentFilter pass
// unharmed. Array keys are escaped too.
func Escape(v any) any {
	switch val := v.(type) {
	case string:
		return escapeString(val)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = Escape(item)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[escapeString(k)] = Escape(item)
		}
		return out
	default:
		return val
	}
}

func escapeString(s string) string {
	s = strings.ReplaceAll(s, "%", "%%")
	if strings.HasPrefix(s, "@") {
		s = "@" + s
	}
	return s
}
