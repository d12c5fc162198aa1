package dicore

import (
	"strings"
	"testing"
)

func TestAutowireArgumentsPositionalNamedAndVariadic(t *testing.T) {
	universe := NewFakeUniverse()
	registry := NewBasicRegistry(universe)
	r := NewResolver(registry, universe)

	params := []ParamInfo{
		{Name: "a"},
		{Name: "b"},
		{Name: "rest", Variadic: true},
	}
	args := Arguments{
		{Value: 1},
		{Name: "b", Value: "two"},
		{Value: 3},
		{Value: 4},
	}

	got, err := r.AutowireArguments(params, args)
	if err != nil {
		t.Fatalf("AutowireArguments() = %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("AutowireArguments() = %#v, want 4 entries", got)
	}
	if got[0].Value != 1 || got[0].Name != "" {
		t.Fatalf("got[0] = %#v, want positional 1", got[0])
	}
	if got[1].Name != "b" || got[1].Value != "two" {
		t.Fatalf("got[1] = %#v, want named b=two", got[1])
	}
	if got[2].Value != 3 || got[3].Value != 4 {
		t.Fatalf("variadic tail = %#v, want [3 4]", got[2:])
	}
}

func TestAutowireArgumentsRejectsUnknownNamedArgument(t *testing.T) {
	universe := NewFakeUniverse()
	registry := NewBasicRegistry(universe)
	r := NewResolver(registry, universe)

	_, err := r.AutowireArguments(
		[]ParamInfo{{Name: "known"}},
		Arguments{{Name: "known", Value: 1}, {Name: "typo", Value: 2}},
	)
	if err == nil {
		t.Fatal("AutowireArguments() = nil, want error for unknown named argument")
	}
}

func TestAutowireArgumentsRejectsTooManyPositional(t *testing.T) {
	universe := NewFakeUniverse()
	registry := NewBasicRegistry(universe)
	r := NewResolver(registry, universe)

	_, err := r.AutowireArguments(
		[]ParamInfo{{Name: "a"}},
		Arguments{{Value: 1}, {Value: 2}},
	)
	if err == nil {
		t.Fatal("AutowireArguments() = nil, want error for too many positional arguments")
	}
}

func TestAutowireArgumentsIntersectionTypeIsHardError(t *testing.T) {
	universe := NewFakeUniverse()
	registry := NewBasicRegistry(universe)
	r := NewResolver(registry, universe)

	_, err := r.AutowireArguments(
		[]ParamInfo{{Name: "dep", Intersection: true}},
		Arguments{},
	)
	if err == nil {
		t.Fatal("AutowireArguments() = nil, want intersection-type error")
	}
}

func TestAutowireArgumentsUnionWithDefaultIsSkipped(t *testing.T) {
	universe := NewFakeUniverse()
	registry := NewBasicRegistry(universe)
	r := NewResolver(registry, universe)

	got, err := r.AutowireArguments(
		[]ParamInfo{{Name: "dep", Union: true, HasDefault: true}},
		Arguments{},
	)
	if err != nil {
		t.Fatalf("AutowireArguments() = %v, want nil", err)
	}
	if len(got) != 0 {
		t.Fatalf("AutowireArguments() = %#v, want empty (deferred to declared default)", got)
	}
}

func TestAutowireArgumentsAmbiguousMatchIsRequiredBySuffixed(t *testing.T) {
	universe := NewFakeUniverse()
	universe.AddInterface("Handler")
	universe.AddClass("FooHandler")
	universe.Implement("FooHandler", "Handler")
	universe.AddClass("BarHandler")
	universe.Implement("BarHandler", "Handler")

	registry := NewBasicRegistry(universe)
	foo := NewStatementDefinition("foo", NewStatement(StringEntity("FooHandler")))
	foo.SetType("FooHandler")
	bar := NewStatementDefinition("bar", NewStatement(StringEntity("BarHandler")))
	bar.SetType("BarHandler")
	mustAdd(t, registry, foo)
	mustAdd(t, registry, bar)

	r := NewResolver(registry, universe)
	_, err := r.AutowireArguments([]ParamInfo{{Name: "handler", ClassName: "Handler"}}, Arguments{})
	if err == nil {
		t.Fatal("AutowireArguments() = nil, want an ambiguous-match error")
	}
	if !strings.Contains(err.Error(), "Multiple services of type") {
		t.Fatalf("AutowireArguments() = %v, want the ambiguous-match message", err)
	}
	if !strings.Contains(err.Error(), "Required by $handler") {
		t.Fatalf("AutowireArguments() = %v, want a Required-by suffix naming the parameter", err)
	}
}

func TestAutowireArgumentsUnionWithoutDefaultIsHardError(t *testing.T) {
	universe := NewFakeUniverse()
	registry := NewBasicRegistry(universe)
	r := NewResolver(registry, universe)

	_, err := r.AutowireArguments(
		[]ParamInfo{{Name: "dep", Union: true}},
		Arguments{},
	)
	if err == nil {
		t.Fatal("AutowireArguments() = nil, want union-without-default error")
	}
}
