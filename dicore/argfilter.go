package dicore

import (
	"regexp"
	"strings"
)

// FilterArguments recursively walks v — scalars, []any, map[string]any,
// Arguments, and *Statement — converting the two textual shorthands a raw
// definition source is allowed to use in place of a typed value:
//
//   - "@name" and "@self" become a Reference (NameRef/Self); a literal "@"
//     is written doubled ("@@name") and comes back out as a single "@".
//   - "Class::CONST" and "Class::Case" become the constant or enum case
//     value itself, resolved through universe.
//   - "@service::CONST" and "@service::property" are the same two forms
//     read off a service reference rather than a class name: if universe
//     can resolve the constant/enum case directly off the head it wins
//     (treating the head as a class name is harmless even when it's also
//     a service name), otherwise it becomes a property-read *Statement
//     against the referenced service, left for the resolver to validate.
//
// Everything else, including values that are already typed (Reference,
// Entity), passes through unchanged; a *Statement keeps its Entity and has
// its Args filtered. This is the Go analogue of
// the spec's ArgumentFilter: definitions built programmatically never need
// it, but definitions assembled from loosely-typed source (a scanner, a
// config file) funnel through it once before being handed to the resolver.
func FilterArguments(v any, universe TypeUniverse) (any, error) {
	switch val := v.(type) {
	case string:
		return filterString(val, universe)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			f, err := FilterArguments(item, universe)
			if err != nil {
				return nil, err
			}
			out[i] = f
		}
		return out, nil
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			f, err := FilterArguments(item, universe)
			if err != nil {
				return nil, err
			}
			out[k] = f
		}
		return out, nil
	case Arguments:
		out := make(Arguments, len(val))
		for i, arg := range val {
			f, err := FilterArguments(arg.Value, universe)
			if err != nil {
				return nil, err
			}
			out[i] = Argument{Name: arg.Name, Value: f}
		}
		return out, nil
	case *Statement:
		if val == nil {
			return val, nil
		}
		filteredArgs, err := FilterArguments(val.Args, universe)
		if err != nil {
			return nil, err
		}
		return &Statement{Entity: val.Entity, Args: filteredArgs.(Arguments)}, nil
	default:
		return v, nil
	}
}

var classConstPattern = regexp.MustCompile(`^([\w\\]+)::([A-Za-z_]\w*)$`)

func filterString(s string, universe TypeUniverse) (any, error) {
	if strings.HasPrefix(s, "@@") {
		return s[1:], nil
	}
	if strings.HasPrefix(s, "@") {
		name := s[1:]
		if name == "self" {
			return Self(), nil
		}
		if head, member, ok := splitMemberAccess(name); ok {
			if universe != nil {
				if v, ok := universe.EnumCase(head, member); ok {
					return v, nil
				}
				if v, ok := universe.ClassConst(head, member); ok {
					return v, nil
				}
			}
			return &Statement{
				Entity: CallableEntity{Head: RefHead{Ref: NameRef(head)}, Member: "$" + member},
			}, nil
		}
		return NameRef(name), nil
	}

	if m := classConstPattern.FindStringSubmatch(s); m != nil {
		class, member := m[1], m[2]
		if universe != nil {
			if v, ok := universe.EnumCase(class, member); ok {
				return v, nil
			}
			if v, ok := universe.ClassConst(class, member); ok {
				return v, nil
			}
		}
		return nil, badEntityNameError(s)
	}

	return s, nil
}

// PrefixServiceName rewrites every "@name" string and every Reference it
// finds reachable from v so it targets the prefixed key a sub-container's
// definitions are mounted under when merged into a parent registry,
// recursing into []any, map[string]any, Arguments, and *Statement the same
// way FilterArguments does. "@self", the "@@" escape, the reserved
// ThisContainer reference, and any other value pass through unchanged.
func PrefixServiceName(v any, prefix string) any {
	if prefix == "" {
		return v
	}
	switch val := v.(type) {
	case string:
		return prefixServiceNameString(val, prefix)
	case Reference:
		return prefixReference(val, prefix)
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = PrefixServiceName(item, prefix)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, item := range val {
			out[k] = PrefixServiceName(item, prefix)
		}
		return out
	case Arguments:
		out := make(Arguments, len(val))
		for i, arg := range val {
			out[i] = Argument{Name: arg.Name, Value: PrefixServiceName(arg.Value, prefix)}
		}
		return out
	case *Statement:
		if val == nil {
			return val
		}
		return &Statement{
			Entity: prefixEntity(val.Entity, prefix),
			Args:   PrefixServiceName(val.Args, prefix).(Arguments),
		}
	default:
		return v
	}
}

func prefixServiceNameString(name, prefix string) string {
	if strings.HasPrefix(name, "@@") || !strings.HasPrefix(name, "@") {
		return name
	}
	if name == "@self" {
		return name
	}
	return "@" + prefix + name[1:]
}

func prefixReference(ref Reference, prefix string) Reference {
	if ref.Kind != RefName || ref.Name == "" || ref.Name == ThisContainer {
		return ref
	}
	return NameRef(prefix + ref.Name)
}

func prefixEntity(entity Entity, prefix string) Entity {
	switch e := entity.(type) {
	case RefEntity:
		return RefEntity{Ref: prefixReference(e.Ref, prefix)}
	case CallableEntity:
		return CallableEntity{Head: prefixHead(e.Head, prefix), Member: e.Member}
	default:
		return entity
	}
}

func prefixHead(head EntityHead, prefix string) EntityHead {
	switch h := head.(type) {
	case RefHead:
		return RefHead{Ref: prefixReference(h.Ref, prefix)}
	case StmtHead:
		if h.Stmt == nil {
			return h
		}
		return StmtHead{Stmt: PrefixServiceName(h.Stmt, prefix).(*Statement)}
	default:
		return head
	}
}
