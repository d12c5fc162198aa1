package dicore

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// containerType is the pseudo-class name ThisContainer resolves to: no
// universe lookup backs it, it is always available, and it is never a
// candidate for GetByType matching.
const containerType = "Container"

// memberPattern validates a CallableEntity's Member against spec §4.1 step
// 3's grammar: one or more backslash-qualified identifier segments,
// optionally prefixed by "$" (a property accessor) and optionally
// suffixed by "[]" (array-append). It is checked only for a ClassHead,
// RefHead, or StmtHead receiver — a GlobalHead's Member is whatever name
// the TypeUniverse indexes free functions under (go/types-backed universes
// qualify it with a package path), which this user-facing member grammar
// was never meant to constrain.
var memberPattern = regexp.MustCompile(`^\$?[A-Za-z_]\w*(?:\\[A-Za-z_]\w*)*(\[\])?$`)

// classifyMember reports whether member names a property accessor ("$name"
// or "$name[]") rather than a method call, and whether it is specifically
// the array-append form.
func classifyMember(member string) (propName string, isAppend, isProperty bool) {
	if !strings.HasPrefix(member, "$") {
		return "", false, false
	}
	name := member[1:]
	if strings.HasSuffix(name, "[]") {
		return name[:len(name)-2], true, true
	}
	return name, false, true
}

// Resolver runs the two-phase resolution pipeline (spec §4.1/§4.5) against
// a Registry and a TypeUniverse. It is single-threaded and non-reentrant:
// a Resolver value must not be shared across goroutines while ResolveAll
// or any of its component steps is running. Callers that need concurrent
// discovery (scanning a source tree for definitions, say) must finish that
// work and hand the Resolver a fully populated Registry before calling in.
type Resolver struct {
	Registry Registry
	Universe TypeUniverse

	// StrictWarnings turns an unresolved required autowired parameter from
	// a recorded warning (the default, matching the source container's
	// deprecation-style tolerance) into a hard *ServiceCreationException.
	StrictWarnings bool

	resolving      map[string]bool
	resolveOrder   []string
	currentService string
	currentType    string

	// currentServiceAllowed mirrors the scope's "currentServiceAllowed"
	// flag: true while completing a setup statement, false while
	// completing the definition's own creator statement. It gates
	// self-injection: a setup call may autowire the service being set up
	// into itself (a callback operating on the just-built instance), a
	// constructor call may not.
	currentServiceAllowed bool

	warnings []string
}

// NewResolver returns a Resolver over registry and universe, both of which
// must be non-nil.
func NewResolver(registry Registry, universe TypeUniverse) *Resolver {
	return &Resolver{
		Registry:  registry,
		Universe:  universe,
		resolving: make(map[string]bool),
	}
}

// Warnings returns the soft-failure messages accumulated by autowiring
// required parameters that could not be matched, in the order they were
// recorded. Empty unless StrictWarnings is false and at least one such
// parameter was encountered.
func (r *Resolver) Warnings() []string { return r.warnings }

func (r *Resolver) warnOrFail(format string, args ...any) error {
	if r.StrictWarnings {
		return unresolvedDependencyError(format, args...)
	}
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
	return nil
}

// ResolveAll runs Phase 1 over every definition in the registry, then
// Phase 2 over every definition, in registration order. It stops at the
// first error, matching the all-or-nothing build semantics of the
// container this package's resolution core was modeled on.
func (r *Resolver) ResolveAll() error {
	for _, def := range r.Registry.Definitions() {
		if err := r.ResolveDefinition(def); err != nil {
			return err
		}
	}
	for _, def := range r.Registry.Definitions() {
		if err := r.CompleteDefinition(def); err != nil {
			return err
		}
	}
	return nil
}

// ResolveDefinition is Phase 1 for a single definition: it guards against
// recursion and sets up the resolver's currentService/currentType scope,
// then drives resolution from def.ResolveType, which determines def's
// resolved class/interface type from its own body without touching
// arguments. It is idempotent and safe to call out of order — a definition
// already carrying a type returns immediately — which is what lets
// ResolveReferenceType call back into it lazily while walking another
// definition's dependency graph.
func (r *Resolver) ResolveDefinition(def Definition) error {
	if def.Type() != "" {
		return nil
	}
	name := def.Name()
	if r.resolving[name] {
		chain := append(append([]string{}, r.resolveOrder...), name)
		return circularReferenceError(chain)
	}
	r.resolving[name] = true
	r.resolveOrder = append(r.resolveOrder, name)
	if br, ok := r.Registry.(*BasicRegistry); ok {
		br.lock(name)
	}
	defer func() {
		delete(r.resolving, name)
		r.resolveOrder = r.resolveOrder[:len(r.resolveOrder)-1]
		if br, ok := r.Registry.(*BasicRegistry); ok {
			br.unlock(name)
		}
	}()

	prevService, prevType := r.currentService, r.currentType
	r.currentService, r.currentType = name, ""
	defer func() { r.currentService, r.currentType = prevService, prevType }()

	if err := def.ResolveType(r); err != nil {
		return completeException(err, def)
	}
	return nil
}

// ResolveEntityType determines the class/interface an entity's evaluation
// produces, or "" if it produces a scalar or an otherwise type-unconstrained
// value (a raw literal, a call with no declared return class).
func (r *Resolver) ResolveEntityType(entity Entity) (string, error) {
	switch e := entity.(type) {
	case StringEntity:
		name := string(e)
		if containsLiteralMarker(name) {
			return "", nil
		}
		if isBuiltinCast(name) {
			return "", nil
		}
		if r.Universe.InterfaceExists(name) {
			return "", interfaceInsteadOfClassError(name)
		}
		if !r.Universe.ClassExists(name) {
			return "", classNotFoundError(name)
		}
		if !r.Universe.IsConcrete(name) {
			return "", classIsAbstractError(name)
		}
		return name, nil

	case RefEntity:
		return r.ResolveReferenceType(e.Ref)

	case CallableEntity:
		fn, receiverClass, err := r.resolveCallableFunction(e)
		if err != nil {
			return "", err
		}
		if receiverClass != "" && r.currentService != "" {
			r.Registry.AddDependency(r.currentService, receiverClass)
		}
		if fn == nil || fn.ReturnClass == "" {
			return "", nil
		}
		return fn.ReturnClass, nil

	default:
		return "", fmt.Errorf("dicore: unrecognized entity %T", entity)
	}
}

// ResolveReferenceType resolves the type a Reference's target produces,
// lazily running Phase 1 for a by-name target that hasn't been resolved
// yet. A Type reference resolves to the type it names, without consulting
// the registry; which definition satisfies it is settled later by
// NormalizeReference.
func (r *Resolver) ResolveReferenceType(ref Reference) (string, error) {
	switch ref.Kind {
	case RefSelf:
		if r.currentService == "" {
			return "", fmt.Errorf("dicore: @self referenced outside of a definition")
		}
		if r.currentType == "" {
			return "", newServiceCreationError(
				"Cannot reference @self: the type of service '%s' is still being resolved.", r.currentService)
		}
		return r.currentType, nil

	case RefName:
		if ref.Name == ThisContainer {
			return containerType, nil
		}
		def, ok := r.Registry.GetDefinition(ref.Name)
		if !ok {
			return "", serviceNotFoundError(ref.Name)
		}
		if def.Type() == "" {
			if err := r.ResolveDefinition(def); err != nil {
				return "", err
			}
		}
		return def.Type(), nil

	case RefType:
		// Phase 1's idea of "the type this reference produces" is the
		// named type itself — which concrete definition will actually
		// satisfy it is a Phase 2 question, settled by NormalizeReference.
		return ref.Name, nil

	default:
		return "", fmt.Errorf("dicore: unrecognized reference kind %v", ref.Kind)
	}
}

// resolveCallableFunction resolves a CallableEntity's receiver class (if
// any) and returns the FunctionInfo its member names.
func (r *Resolver) resolveCallableFunction(e CallableEntity) (fn *FunctionInfo, receiverClass string, err error) {
	switch head := e.Head.(type) {
	case GlobalHead:
		f, ok := r.Universe.GlobalFunction(e.Member)
		if !ok {
			return nil, "", functionNotFoundError(e.Member)
		}
		return f, "", nil

	case ClassHead:
		class := string(head)
		f, ok := r.Universe.Method(class, e.Member)
		if !ok {
			return nil, "", methodNotCallableError(class, e.Member)
		}
		if !f.Public {
			return nil, "", nonPublicMethodError(class, e.Member)
		}
		if f.FromTrait && !f.Static {
			return nil, "", traitMethodNotStaticError(class, e.Member)
		}
		return f, class, nil

	case RefHead:
		class, err := r.ResolveReferenceType(head.Ref)
		if err != nil {
			return nil, "", err
		}
		return r.resolveMemberOn(class, e.Member)

	case StmtHead:
		class, err := r.ResolveEntityType(head.Stmt.Entity)
		if err != nil {
			return nil, "", err
		}
		return r.resolveMemberOn(class, e.Member)

	default:
		return nil, "", fmt.Errorf("dicore: unrecognized entity head %T", head)
	}
}

func (r *Resolver) resolveMemberOn(class, member string) (*FunctionInfo, string, error) {
	if class == "" || class == containerType {
		return nil, class, nil
	}
	f, ok := r.Universe.Method(class, member)
	if !ok {
		return nil, "", methodNotCallableError(class, member)
	}
	if !f.Public {
		return nil, "", nonPublicMethodError(class, member)
	}
	return f, class, nil
}

// resolveReceiverType resolves a CallableEntity head's class/interface
// without looking up a method on it — the half of resolveCallableFunction
// a property accessor needs, since "$name"/"$name[]" names a field, not a
// reflected method.
func (r *Resolver) resolveReceiverType(head EntityHead) (string, error) {
	switch h := head.(type) {
	case ClassHead:
		return string(h), nil
	case RefHead:
		return r.ResolveReferenceType(h.Ref)
	case StmtHead:
		return r.ResolveEntityType(h.Stmt.Entity)
	default:
		return "", nil
	}
}

// completePropertyAccess implements spec §4.1 step 3's property-accessor
// dispatch for a "$name"/"$name[]" member: its argument, if any, is
// completed like any other nested value but never autowired — there is no
// declared parameter to autowire against, only an arity rule. A plain
// "$name" reads (0 arguments) or writes (1 argument) the property;
// "$name[]" always appends a value and therefore requires exactly one.
func (r *Resolver) completePropertyAccess(entity Entity, propName string, isAppend bool, args Arguments, inSetup bool) (*Statement, error) {
	positional := args.Positional()
	if len(positional) != len(args) {
		return nil, withRelatedTo(
			argumentMismatchError("Property accessor $%s takes only positional arguments.", propName), entity, inSetup)
	}
	switch {
	case isAppend && len(positional) != 1:
		return nil, withRelatedTo(
			argumentMismatchError("Property array-append $%s[] requires exactly one argument.", propName), entity, inSetup)
	case !isAppend && len(positional) > 1:
		return nil, withRelatedTo(
			argumentMismatchError("Property accessor $%s takes 0 or 1 argument, %d given.", propName, len(positional)),
			entity, inSetup)
	}

	completed, err := r.completeNestedStatements(args, inSetup)
	if err != nil {
		return nil, err
	}
	return &Statement{Entity: entity, Args: completed}, nil
}

// CompleteDefinition is Phase 2 for a single definition: it sets up the
// resolver's currentService/currentType scope and records def's own-type
// dependency, then drives completion from def.Complete, which normalizes
// and autowires the construction statement and every setup statement.
func (r *Resolver) CompleteDefinition(def Definition) error {
	prevService, prevType := r.currentService, r.currentType
	r.currentService, r.currentType = def.Name(), def.Type()
	defer func() { r.currentService, r.currentType = prevService, prevType }()

	if def.Type() != "" {
		r.Registry.AddDependency(def.Name(), def.Type())
	}

	if err := def.Complete(r); err != nil {
		return completeException(err, def)
	}
	return nil
}

// NormalizeReference settles a Reference into its canonical Phase 2 form:
// Kind=RefType is resolved through resolveByType now that every definition
// carries a type, and Kind=RefName naming the service currently under
// construction collapses to Self (spec §4.1's normalizeReference). Self
// references pass through unchanged.
func (r *Resolver) NormalizeReference(ref Reference) (Reference, error) {
	switch ref.Kind {
	case RefType:
		resolved, err := r.resolveByType(ref.Name)
		if err != nil {
			var notAllowed *NotAllowedDuringResolvingException
			if errors.As(err, &notAllowed) {
				return NameRef(ref.Name), nil
			}
			return Reference{}, err
		}
		return resolved, nil
	case RefName:
		if ref.Name == r.currentService && ref.Name != "" && ref.Name != ThisContainer {
			return Self(), nil
		}
		return ref, nil
	default:
		return ref, nil
	}
}

// resolveByType implements spec §4.1's dedicated getByType(type) operation,
// distinct from the registry's raw GetByType: it special-cases the current
// service before consulting the registry at all.
//
// While completing a setup statement (currentServiceAllowed), a query that
// the service being built itself satisfies short-circuits to @self — the
// setup callback legitimately operates on the instance it is configuring.
// While completing the definition's own creator statement, that same
// self-match is instead a self-injection attempt: a service cannot depend
// on itself while it's still being constructed, so a match against the
// current service is reported as missing rather than returned.
func (r *Resolver) resolveByType(typeName string) (Reference, error) {
	if r.currentService != "" && r.currentServiceAllowed && r.currentType != "" &&
		r.Universe.IsSubtype(r.currentType, typeName) {
		return Self(), nil
	}
	def, err := r.Registry.GetByType(typeName)
	if err != nil {
		return Reference{}, err
	}
	if def.Name() == r.currentService && !r.currentServiceAllowed {
		return Reference{}, missingServiceError("Service of type '%s' not found.", typeName)
	}
	return NameRef(def.Name()), nil
}

// NormalizeEntity recursively rewrites every Type-kind Reference reachable
// from entity into its resolved Name form.
func (r *Resolver) NormalizeEntity(entity Entity) (Entity, error) {
	switch e := entity.(type) {
	case RefEntity:
		ref, err := r.NormalizeReference(e.Ref)
		if err != nil {
			return nil, err
		}
		return RefEntity{Ref: ref}, nil

	case CallableEntity:
		head, err := r.normalizeHead(e.Head)
		if err != nil {
			return nil, err
		}
		return CallableEntity{Head: head, Member: e.Member}, nil

	default:
		return entity, nil
	}
}

// aliasCallable implements spec §4.1 step 3's dispatch case for a bare
// Reference entity: rewrite it to [Reference(THIS_CONTAINER),
// methodNameFor(name)], since the generated container exposes every
// service through an accessor method rather than a raw reference.
func (r *Resolver) aliasCallable(ref Reference) Entity {
	name := ref.Name
	if ref.Kind == RefSelf {
		name = r.currentService
	}
	return CallableEntity{
		Head:   RefHead{Ref: NameRef(ThisContainer)},
		Member: r.Registry.MethodName(name),
	}
}

func (r *Resolver) normalizeHead(head EntityHead) (EntityHead, error) {
	switch h := head.(type) {
	case RefHead:
		ref, err := r.NormalizeReference(h.Ref)
		if err != nil {
			return nil, err
		}
		return RefHead{Ref: ref}, nil

	case StmtHead:
		stmt, err := r.CompleteStatement(h.Stmt, false)
		if err != nil {
			return nil, err
		}
		return StmtHead{Stmt: stmt}, nil

	default:
		return head, nil
	}
}

// CompleteStatement is the Phase 2 dispatch described in spec §4.1 step 3:
// it normalizes the statement's entity, determines the target function (a
// constructor, method, free function, or none for a raw literal/alias),
// and autowires its arguments against that function's declared parameters.
// inSetup selects the "Related to … in setup" suffix a failure is decorated
// with, and sets currentServiceAllowed for the duration of the call, which
// decides whether a by-type lookup may resolve to the current service.
func (r *Resolver) CompleteStatement(stmt *Statement, inSetup bool) (*Statement, error) {
	if stmt == nil {
		return nil, nil
	}

	prevAllowed := r.currentServiceAllowed
	r.currentServiceAllowed = inSetup
	defer func() { r.currentServiceAllowed = prevAllowed }()

	filtered, err := FilterArguments(stmt.Args, r.Universe)
	if err != nil {
		return nil, withRelatedTo(err, stmt.Entity, inSetup)
	}
	args := filtered.(Arguments)

	entity, err := r.NormalizeEntity(stmt.Entity)
	if err != nil {
		return nil, withRelatedTo(err, stmt.Entity, inSetup)
	}
	if ref, ok := entity.(RefEntity); ok {
		entity = r.aliasCallable(ref.Ref)
	}

	if ce, ok := entity.(CallableEntity); ok {
		if _, isGlobal := ce.Head.(GlobalHead); !isGlobal {
			if !memberPattern.MatchString(ce.Member) {
				return nil, withRelatedTo(badEntityNameError(ce.Member), entity, inSetup)
			}
			if propName, isAppend, isProperty := classifyMember(ce.Member); isProperty {
				if _, err := r.resolveReceiverType(ce.Head); err != nil {
					return nil, withRelatedTo(err, entity, inSetup)
				}
				return r.completePropertyAccess(entity, propName, isAppend, args, inSetup)
			}
		}
	}

	params, err := r.paramsFor(entity, args)
	if err != nil {
		return nil, withRelatedTo(err, entity, inSetup)
	}

	completed, err := r.AutowireArguments(params, args)
	if err != nil {
		return nil, withRelatedTo(err, entity, inSetup)
	}

	completed, err = r.completeNestedStatements(completed, inSetup)
	if err != nil {
		return nil, err
	}

	return &Statement{Entity: entity, Args: completed}, nil
}

// paramsFor returns the declared parameter list entity's target accepts,
// or nil if the entity is a raw literal, an alias, or a builtin cast (none
// of which are autowired — a builtin cast's single argument is positional
// and type-agnostic by construction).
func (r *Resolver) paramsFor(entity Entity, args Arguments) ([]ParamInfo, error) {
	switch e := entity.(type) {
	case StringEntity:
		name := string(e)
		if containsLiteralMarker(name) || isBuiltinCast(name) {
			if isBuiltinCast(name) && len(args.Positional()) != 1 {
				return nil, argumentMismatchError("Builtin cast '%s' expects exactly one argument.", name)
			}
			return nil, nil
		}
		ctor, ok := r.Universe.Constructor(name)
		if r.currentService != "" {
			r.Registry.AddDependency(r.currentService, name)
		}
		if !ok {
			if len(args) > 0 {
				return nil, unexpectedConstructorArgsError(name)
			}
			return nil, nil
		}
		if !ctor.Public {
			return nil, nonPublicConstructorError(name)
		}
		return ctor.Params, nil

	case RefEntity:
		return nil, nil

	case CallableEntity:
		fn, _, err := r.resolveCallableFunction(e)
		if err != nil {
			return nil, err
		}
		if fn == nil {
			return nil, nil
		}
		return fn.Params, nil

	default:
		return nil, fmt.Errorf("dicore: unrecognized entity %T", entity)
	}
}

// completeNestedStatements recurses CompleteStatement into every nested
// *Statement argument value, and validates every Reference argument value
// actually names a definition that exists (or is the reserved container
// service).
func (r *Resolver) completeNestedStatements(args Arguments, inSetup bool) (Arguments, error) {
	out := make(Arguments, len(args))
	for i, arg := range args {
		switch v := arg.Value.(type) {
		case *Statement:
			expanded, ok, err := r.expandTypedOrTagged(v)
			if err != nil {
				return nil, err
			}
			if ok {
				out[i] = Argument{Name: arg.Name, Value: expanded}
				continue
			}
			completed, err := r.CompleteStatement(v, inSetup)
			if err != nil {
				return nil, err
			}
			out[i] = Argument{Name: arg.Name, Value: completed}

		case Reference:
			ref, err := r.NormalizeReference(v)
			if err != nil {
				return nil, err
			}
			if ref.Kind == RefName && ref.Name != ThisContainer {
				if !r.Registry.HasDefinition(ref.Name) {
					return nil, serviceNotFoundError(ref.Name)
				}
			}
			out[i] = Argument{Name: arg.Name, Value: ref}

		default:
			out[i] = arg
		}
	}
	return out, nil
}

// expandTypedOrTagged implements spec §4.1 step 4's "typed"/"tagged"
// expansion sentinel: a nested Statement whose entity is the literal
// string "typed" or "tagged" is not completed as an ordinary call — it is
// replaced outright by the flat list of References its arguments name.
// "typed" contributes every autowired service whose type satisfies the
// named type; "tagged" contributes every service carrying the named tag.
// Both skip the service currently being resolved by name, in insertion
// order. ok is false for any other statement, which the caller completes
// normally.
func (r *Resolver) expandTypedOrTagged(stmt *Statement) ([]any, bool, error) {
	name, isString := stmt.Entity.(StringEntity)
	if !isString || (name != "typed" && name != "tagged") {
		return nil, false, nil
	}

	var out []any
	for _, arg := range stmt.Args {
		key, ok := stringArgValue(arg.Value)
		if !ok {
			return nil, true, fmt.Errorf("dicore: %q expansion expects string arguments, got %T", name, arg.Value)
		}

		switch name {
		case "typed":
			for _, def := range r.Registry.FindAutowired() {
				if def.Name() == r.currentService || def.Type() == "" {
					continue
				}
				if r.Universe.IsSubtype(def.Type(), key) {
					out = append(out, NameRef(def.Name()))
				}
			}
		case "tagged":
			for _, def := range r.Registry.FindByTag(key) {
				if def.Name() == r.currentService {
					continue
				}
				out = append(out, NameRef(def.Name()))
			}
		}
	}
	return out, true, nil
}

func stringArgValue(v any) (string, bool) {
	switch s := v.(type) {
	case string:
		return s, true
	case LiteralString:
		return string(s), true
	default:
		return "", false
	}
}
