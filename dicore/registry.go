package dicore

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// ThisContainer is the reserved service name a Statement can reference to
// obtain the container/registry itself, matching the host container's
// always-registered self-service.
const ThisContainer = "container"

// LiteralString marks a value that must never be reinterpreted by
// FilterArguments or Expand, even though its content would otherwise look
// like a "@name" reference or a "Class::CONST" expression.
// BasicRegistry.Literal is the only constructor.
type LiteralString string

// Registry is the definition store a Resolver operates against: the Go
// analogue of the source specification's ContainerBuilder facade.
type Registry interface {
	HasDefinition(name string) bool
	GetDefinition(name string) (Definition, bool)
	Definitions() []Definition
	AddDefinition(def Definition) error
	FindByTag(tag string) []Definition
	FindAutowired() []Definition
	GetByType(typeName string) (Definition, error)
	AddDependency(from, to string)
	Dependencies(from string) []string
	MethodName(serviceName string) string
}

// BasicRegistry is the default, map-backed Registry implementation.
type BasicRegistry struct {
	universe TypeUniverse
	defs     map[string]Definition
	order    []string
	deps     map[string][]string
	locked   map[string]bool
}

// NewBasicRegistry returns an empty registry that resolves subtype queries
// against universe.
func NewBasicRegistry(universe TypeUniverse) *BasicRegistry {
	return &BasicRegistry{
		universe: universe,
		defs:     make(map[string]Definition),
		deps:     make(map[string][]string),
		locked:   make(map[string]bool),
	}
}

func (r *BasicRegistry) HasDefinition(name string) bool {
	_, ok := r.defs[name]
	return ok
}

func (r *BasicRegistry) GetDefinition(name string) (Definition, bool) {
	d, ok := r.defs[name]
	return d, ok
}

func (r *BasicRegistry) Definitions() []Definition {
	out := make([]Definition, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, r.defs[name])
	}
	return out
}

// AddDefinition registers def under def.Name(). An empty name is rejected:
// every definition this package resolves needs a stable key, including
// ones a scanner discovered anonymously (callers must synthesize one).
func (r *BasicRegistry) AddDefinition(def Definition) error {
	name := def.Name()
	if name == "" {
		return fmt.Errorf("dicore: registry: definition has no name")
	}
	if _, exists := r.defs[name]; exists {
		return fmt.Errorf("dicore: registry: duplicate definition '%s'", name)
	}
	r.defs[name] = def
	r.order = append(r.order, name)
	return nil
}

func (r *BasicRegistry) FindByTag(tag string) []Definition {
	var out []Definition
	for _, name := range r.order {
		d := r.defs[name]
		for _, t := range d.Tags() {
			if t == tag {
				out = append(out, d)
				break
			}
		}
	}
	return out
}

func (r *BasicRegistry) FindAutowired() []Definition {
	var out []Definition
	for _, name := range r.order {
		d := r.defs[name]
		if d.Autowired() {
			out = append(out, d)
		}
	}
	return out
}

// lock/unlock let a Resolver mark the definition it is currently running
// Phase 1 on, so a reentrant GetByType call made while resolving that same
// definition's own type can be told "not yet" instead of silently guessing.
func (r *BasicRegistry) lock(name string)   { r.locked[name] = true }
func (r *BasicRegistry) unlock(name string) { delete(r.locked, name) }

// GetByType returns the unique autowired definition whose resolved type
// satisfies typeName. It returns a *NotAllowedDuringResolvingException if a
// same-named candidate's type is still being computed by the caller's own
// Phase 1 pass (self-referential query), and a *MissingServiceException or
// a multiple-match *ServiceCreationException otherwise.
func (r *BasicRegistry) GetByType(typeName string) (Definition, error) {
	var candidates []Definition
	for _, name := range r.order {
		d := r.defs[name]
		if !d.Autowired() {
			continue
		}
		if d.Type() == "" {
			if r.locked[name] {
				return nil, notAllowedDuringResolvingError(
					"Cannot determine if service '%s' is of type '%s': its own type is still being resolved.", name, typeName)
			}
			continue
		}
		if r.universe != nil && r.universe.IsSubtype(d.Type(), typeName) {
			candidates = append(candidates, d)
		}
	}

	switch len(candidates) {
	case 0:
		return nil, missingServiceError("Service of type '%s' not found.", typeName)
	case 1:
		return candidates[0], nil
	default:
		names := make([]string, len(candidates))
		for i, c := range candidates {
			names[i] = "'" + c.Name() + "'"
		}
		sort.Strings(names)
		return nil, newServiceCreationError(
			"Multiple services of type '%s' found: %s.", typeName, strings.Join(names, ", "))
	}
}

// AddDependency records that the definition named from depends on the one
// named to, for diagnostic/graph-rendering purposes. The resolver's own
// cycle detection (the recursion set threaded through ResolveDefinition)
// does not consult this — it exists for callers that want to inspect or
// visualize the dependency graph after resolution completes.
func (r *BasicRegistry) AddDependency(from, to string) {
	r.deps[from] = append(r.deps[from], to)
}

func (r *BasicRegistry) Dependencies(from string) []string {
	return r.deps[from]
}

// Literal wraps value so FilterArguments and Expand pass it through without
// reinterpreting a "@name" or "Class::CONST"-shaped string.
func (r *BasicRegistry) Literal(value any) any {
	if s, ok := value.(string); ok {
		return LiteralString(s)
	}
	return value
}

// splitMemberAccess splits a "Class::method" or "service::property"
// reference into its head and member parts. ok is false if raw doesn't
// contain the "::" separator. filterString uses this to recognize
// "@service::CONST" and "@service::property" forms.
func splitMemberAccess(raw string) (head, member string, ok bool) {
	idx := strings.Index(raw, "::")
	if idx < 0 {
		return "", "", false
	}
	return raw[:idx], raw[idx+2:], true
}

// MethodName returns the exported accessor method name the generated
// container would expose serviceName through (spec §4.1 step 3's
// methodNameFor): a bare alias/self-reference statement is rewritten to a
// call against this method instead of staying a raw Reference. The '.',
// '_' and '-' separators a namespaced service name carries (see
// PrefixServiceName) are folded into camel case; every other character,
// such as the '/' of a package-qualified name, is copied unchanged, so the
// result is not always a valid Go identifier.
func (r *BasicRegistry) MethodName(serviceName string) string {
	var b strings.Builder
	upperNext := true
	for _, ch := range serviceName {
		switch {
		case ch == '.' || ch == '_' || ch == '-':
			upperNext = true
		case upperNext:
			b.WriteRune(unicode.ToUpper(ch))
			upperNext = false
		default:
			b.WriteRune(ch)
		}
	}
	return b.String()
}
