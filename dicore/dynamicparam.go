package dicore

// DynamicParameter carries a fragment of generated code standing in for a
// value that is only known at container-runtime (a parameter sourced from
// the environment, a CLI flag, etc). It propagates through Expand whenever
// a placeholder references a runtime-only value: the expansion can no
// longer produce a literal, so it produces a symbolic expression instead.
type DynamicParameter struct {
	// Expr holds the generated-code text this parameter evaluates to, e.g.
	// "$cfg['port']". It is opaque to this package — only a downstream code
	// generator interprets it — but it behaves like a string for the
	// purposes of concatenation during expansion.
	Expr string
}

// NewDynamicParameter wraps a generated-code expression.
func NewDynamicParameter(expr string) DynamicParameter {
	return DynamicParameter{Expr: expr}
}

// Concat returns a new DynamicParameter representing the concatenation of d
// with the literal string s appended after it (s comes after d in source
// order). Used by Expand when composing a partial placeholder expansion
// that involves at least one DynamicParameter.
func (d DynamicParameter) Concat(s string) DynamicParameter {
	if s == "" {
		return d
	}
	return DynamicParameter{Expr: d.Expr + " . " + phpStringLiteral(s)}
}

// ConcatLeft returns a new DynamicParameter representing s concatenated
// before d.
func (d DynamicParameter) ConcatLeft(s string) DynamicParameter {
	if s == "" {
		return d
	}
	return DynamicParameter{Expr: phpStringLiteral(s) + " . " + d.Expr}
}

// ConcatParam returns a new DynamicParameter representing the concatenation
// of two dynamic parameters, d first.
func (d DynamicParameter) ConcatParam(other DynamicParameter) DynamicParameter {
	return DynamicParameter{Expr: d.Expr + " . " + other.Expr}
}

func phpStringLiteral(s string) string {
	escaped := ""
	for _, r := range s {
		switch r {
		case '\'', '\\':
			escaped += "\\" + string(r)
		default:
			escaped += string(r)
		}
	}
	return "'" + escaped + "'"
}
