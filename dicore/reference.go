package dicore

// RefKind distinguishes the three shapes a Reference can take.
type RefKind int

const (
	// RefSelf means "the service currently being resolved".
	RefSelf RefKind = iota
	// RefName points at a definition by its registered key.
	RefName
	// RefType points at an unresolved class/interface name, to be settled
	// by type lookup.
	RefType
)

func (k RefKind) String() string {
	switch k {
	case RefSelf:
		return "self"
	case RefName:
		return "name"
	case RefType:
		return "type"
	default:
		return "unknown"
	}
}

// Reference is a symbolic pointer to a service: to the service currently
// being resolved (Self), to another definition by name (Name), or to an
// as-yet-unresolved class/interface name (Type).
//
// Invariant: after normalizeReference, a Reference is either Self or Name.
// A Type reference whose type could not yet be resolved comes back as a
// Name reference carrying the type name.
type Reference struct {
	Kind RefKind
	Name string // empty for RefSelf
}

// Self returns the sentinel reference to the service currently being built.
func Self() Reference { return Reference{Kind: RefSelf} }

// NameRef returns a reference to a definition by its registered key.
func NameRef(name string) Reference { return Reference{Kind: RefName, Name: name} }

// TypeRef returns a reference to an as-yet-unresolved class/interface name.
func TypeRef(name string) Reference { return Reference{Kind: RefType, Name: name} }

// IsSelf reports whether r is the Self sentinel.
func (r Reference) IsSelf() bool { return r.Kind == RefSelf }

// String renders a reference the way diagnostics quote it: "@self",
// "@name", or the bare (unresolved) type name.
func (r Reference) String() string {
	switch r.Kind {
	case RefSelf:
		return "@self"
	case RefName:
		return "@" + r.Name
	case RefType:
		return r.Name
	default:
		return ""
	}
}
