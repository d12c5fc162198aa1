package dicore

// TypeUniverse is a read-only view of the host's class, interface, function,
// and enum definitions. It is the collaborator the resolver queries whenever
// it needs to reason about a concrete type's shape instead of a definition's
// declared intent — the Go-native stand-in for PHP's ReflectionClass family,
// per the design note that a host without ambient runtime reflection must
// supply this abstraction explicitly.
type TypeUniverse interface {
	// ClassExists reports whether name is a known concrete or abstract class.
	ClassExists(name string) bool

	// InterfaceExists reports whether name is a known interface.
	InterfaceExists(name string) bool

	// FunctionExists reports whether name is a known global (free) function.
	FunctionExists(name string) bool

	// IsConcrete reports whether class can be instantiated: known, not an
	// interface, and not abstract.
	IsConcrete(class string) bool

	// IsSubtype reports whether sub is super, or implements/extends super.
	// IsSubtype(t, t) is always true for a known t.
	IsSubtype(sub, super string) bool

	// Constructor returns the constructor of class, if it declares one.
	Constructor(class string) (*FunctionInfo, bool)

	// Method returns the named method on class, if any (including inherited).
	Method(class, name string) (*FunctionInfo, bool)

	// GlobalFunction returns a free function by name. Go has no single
	// global function namespace, so a CallableEntity's GlobalHead member
	// name must already be qualified the way the implementation indexes
	// its functions (the go/types-backed Universe keys by
	// "<package path>.<func name>"; FakeUniverse keys by the bare name its
	// tests chose).
	GlobalFunction(name string) (*FunctionInfo, bool)

	// ClassConst returns the value of a class constant.
	ClassConst(class, name string) (value any, ok bool)

	// EnumCase returns the value carried by an enum case.
	EnumCase(class, name string) (value any, ok bool)
}

// FunctionInfo describes a reflected constructor, method, or free function.
type FunctionInfo struct {
	Name string

	// Public is false for private/protected methods; always true for free
	// functions and constructors reachable from outside their package.
	Public bool

	// Static is true for methods invocable without an instance.
	Static bool

	// FromTrait marks a method promoted from a trait/mixin. Go has no
	// traits; TypeUniverse implementations backed by go/types always report
	// false here. The field is kept so the resolver's non-static-trait-method
	// rejection rule (spec §4.1) is expressible for hosts that do have them.
	FromTrait bool

	// ReturnClass is the method's declared return type, but only populated
	// when that type is a single concrete class or interface (never "",
	// "any"/mixed, or an unresolved union/intersection).
	ReturnClass string

	Params []ParamInfo
}

// ParamInfo describes one declared parameter of a FunctionInfo.
type ParamInfo struct {
	Name string

	// ClassName is the parameter's type, but only populated when it is a
	// single concrete class or interface type.
	ClassName string

	// ArrayElemType is the element type named by a "Class[]"-style array
	// parameter hint (the Go analogue of PHPDoc's "@param Class[] $name"),
	// resolved against the declaring class's own namespace.
	ArrayElemType string

	Variadic     bool
	HasDefault   bool
	Nullable     bool
	Union        bool
	Intersection bool
}

// IsArray reports whether p names an array-of-class parameter with a known
// element type, the condition autowireArguments needs for list injection.
func (p ParamInfo) IsArray() bool {
	return p.ArrayElemType != ""
}

// FakeUniverse is a map-backed TypeUniverse used by this package's own test
// suite. It is populated directly by test setup code rather than by
// reflecting over compiled source — a fixture, not a production
// collaborator.
type FakeUniverse struct {
	Classes     map[string]*FakeClass
	Interfaces  map[string]bool
	Functions   map[string]*FunctionInfo
	Subtypes    map[string]map[string]bool // sub -> set of super it satisfies
}

// FakeClass describes one class entry in a FakeUniverse.
type FakeClass struct {
	Abstract    bool
	Constructor *FunctionInfo
	Methods     map[string]*FunctionInfo
	Consts      map[string]any
	EnumCases   map[string]any
}

// NewFakeUniverse returns an empty, ready-to-populate FakeUniverse.
func NewFakeUniverse() *FakeUniverse {
	return &FakeUniverse{
		Classes:    make(map[string]*FakeClass),
		Interfaces: make(map[string]bool),
		Functions:  make(map[string]*FunctionInfo),
		Subtypes:   make(map[string]map[string]bool),
	}
}

// AddClass registers a class, creating it with an empty method set if it
// doesn't exist yet, and returns it for further population.
func (u *FakeUniverse) AddClass(name string) *FakeClass {
	c, ok := u.Classes[name]
	if !ok {
		c = &FakeClass{
			Methods:   make(map[string]*FunctionInfo),
			Consts:    make(map[string]any),
			EnumCases: make(map[string]any),
		}
		u.Classes[name] = c
	}
	return c
}

// AddInterface registers name as a known interface.
func (u *FakeUniverse) AddInterface(name string) {
	u.Interfaces[name] = true
}

// Implement records that sub satisfies super (a class implementing an
// interface, or any reflexive/transitive subtype relationship the test
// needs). Subtyping is reflexive by construction in IsSubtype, so tests only
// need to record the non-trivial edges.
func (u *FakeUniverse) Implement(sub, super string) {
	set, ok := u.Subtypes[sub]
	if !ok {
		set = make(map[string]bool)
		u.Subtypes[sub] = set
	}
	set[super] = true
}

func (u *FakeUniverse) ClassExists(name string) bool {
	_, ok := u.Classes[name]
	return ok
}

func (u *FakeUniverse) InterfaceExists(name string) bool {
	return u.Interfaces[name]
}

func (u *FakeUniverse) FunctionExists(name string) bool {
	_, ok := u.Functions[name]
	return ok
}

func (u *FakeUniverse) IsConcrete(class string) bool {
	c, ok := u.Classes[class]
	return ok && !c.Abstract
}

func (u *FakeUniverse) IsSubtype(sub, super string) bool {
	if sub == super {
		return u.ClassExists(sub) || u.InterfaceExists(sub)
	}
	if set, ok := u.Subtypes[sub]; ok && set[super] {
		return true
	}
	return false
}

func (u *FakeUniverse) Constructor(class string) (*FunctionInfo, bool) {
	c, ok := u.Classes[class]
	if !ok || c.Constructor == nil {
		return nil, false
	}
	return c.Constructor, true
}

func (u *FakeUniverse) Method(class, name string) (*FunctionInfo, bool) {
	c, ok := u.Classes[class]
	if !ok {
		return nil, false
	}
	m, ok := c.Methods[name]
	return m, ok
}

func (u *FakeUniverse) GlobalFunction(name string) (*FunctionInfo, bool) {
	f, ok := u.Functions[name]
	return f, ok
}

func (u *FakeUniverse) ClassConst(class, name string) (any, bool) {
	c, ok := u.Classes[class]
	if !ok {
		return nil, false
	}
	v, ok := c.Consts[name]
	return v, ok
}

func (u *FakeUniverse) EnumCase(class, name string) (any, bool) {
	c, ok := u.Classes[class]
	if !ok {
		return nil, false
	}
	v, ok := c.EnumCases[name]
	return v, ok
}
