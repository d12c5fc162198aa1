package dicore

import "fmt"

// Definition is one entry of a Registry: a named (or anonymous) service
// together with the symbolic Statement that constructs it. Its Type field
// moves through three states across the two-phase pipeline: empty (not yet
// resolved), a concrete class/interface name (Phase 1 done), and then stays
// fixed through Phase 2, which only ever touches Statement/Args.
type Definition interface {
	// Name is the registry key, or "" for an anonymous/inline definition.
	Name() string

	// Type is the definition's resolved class or interface name, or "" if
	// ResolveDefinition hasn't run yet.
	Type() string

	// SetType records the result of Phase 1 type resolution.
	SetType(class string)

	// Statement is the symbolic construction expression.
	Statement() *Statement

	// SetStatement replaces the construction expression, e.g. after
	// CompleteStatement autowires its arguments.
	SetStatement(stmt *Statement)

	// Setup is the list of additional calls/property-writes to run against
	// the constructed instance (the "in setup" entries diagnostics mention).
	Setup() []*Statement

	// Autowired reports whether this definition is eligible to satisfy an
	// autowired-by-type lookup (spec §4.1's GetByType candidate filter).
	Autowired() bool

	// Tags returns the tag names attached to this definition, used by
	// FindByTag.
	Tags() []string

	// Descriptor renders the "Service 'name' of type 'Class'"-shaped label
	// that completeException wraps in brackets and prefixes error messages
	// with.
	Descriptor() string

	// ResolveType runs Phase 1 for this definition: it determines and
	// records the definition's resolved class/interface type, driving the
	// process from the definition's own body (spec §4.1) rather than
	// having the Resolver inspect the definition's internals directly —
	// a definition kind with a different construction model than a plain
	// Statement implements this differently while reusing the Resolver's
	// entity-resolution rules via the r callback.
	ResolveType(r *Resolver) error

	// Complete runs Phase 2 for this definition: it normalizes and
	// autowires the definition's construction statement and every setup
	// call, again driven from the definition's own body.
	Complete(r *Resolver) error
}

// StatementDefinition is the concrete Definition implementation every
// Registry in this package produces.
type StatementDefinition struct {
	name      string
	class     string
	stmt      *Statement
	setup     []*Statement
	autowired bool
	tags      []string
}

// NewStatementDefinition returns a definition named name (possibly "" for
// an anonymous one) constructed by stmt. It is autowired-eligible by
// default, matching the source specification's default container behavior.
func NewStatementDefinition(name string, stmt *Statement) *StatementDefinition {
	return &StatementDefinition{name: name, stmt: stmt, autowired: true}
}

func (d *StatementDefinition) Name() string { return d.name }
func (d *StatementDefinition) Type() string  { return d.class }
func (d *StatementDefinition) SetType(class string) {
	d.class = class
}
func (d *StatementDefinition) Statement() *Statement { return d.stmt }
func (d *StatementDefinition) SetStatement(stmt *Statement) {
	d.stmt = stmt
}
func (d *StatementDefinition) Setup() []*Statement { return d.setup }
func (d *StatementDefinition) AddSetup(stmt *Statement) {
	d.setup = append(d.setup, stmt)
}
func (d *StatementDefinition) Autowired() bool { return d.autowired }
func (d *StatementDefinition) SetAutowired(v bool) {
	d.autowired = v
}
func (d *StatementDefinition) Tags() []string { return d.tags }
func (d *StatementDefinition) AddTag(tag string) {
	d.tags = append(d.tags, tag)
}

func (d *StatementDefinition) Descriptor() string {
	switch {
	case d.name != "" && d.class != "":
		return fmt.Sprintf("Service '%s' of type '%s'", d.name, d.class)
	case d.name != "":
		return fmt.Sprintf("Service '%s'", d.name)
	case d.class != "":
		return fmt.Sprintf("Service of type '%s'", d.class)
	default:
		return "Service"
	}
}

// ResolveType determines d's class/interface type from its own statement's
// entity, calling back into r for the actual entity-resolution rules (class
// lookups, reference chasing, function-return-type inference) a definition
// has no business knowing about itself.
func (d *StatementDefinition) ResolveType(r *Resolver) error {
	if d.stmt == nil {
		return fmt.Errorf("definition has no statement")
	}
	class, err := r.ResolveEntityType(d.stmt.Entity)
	if err != nil {
		return err
	}
	if class == "" {
		return unknownServiceTypeError(d.Descriptor())
	}
	d.SetType(class)
	return nil
}

// Complete normalizes and autowires d's construction statement and every
// setup call, calling back into r for the actual per-statement completion
// rules.
func (d *StatementDefinition) Complete(r *Resolver) error {
	stmt, err := r.CompleteStatement(d.stmt, false)
	if err != nil {
		return err
	}
	d.SetStatement(stmt)

	for i, setup := range d.setup {
		completed, err := r.CompleteStatement(setup, true)
		if err != nil {
			return err
		}
		d.setup[i] = completed
	}
	return nil
}
