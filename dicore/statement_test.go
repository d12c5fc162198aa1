package dicore

import "testing"

func TestArgumentsPositionalAndByName(t *testing.T) {
	args := Arguments{
		{Value: "first"},
		{Name: "key", Value: "value"},
		{Value: "second"},
	}
	pos := args.Positional()
	if len(pos) != 2 || pos[0].Value != "first" || pos[1].Value != "second" {
		t.Fatalf("Positional() = %#v, want [first second]", pos)
	}
	v, ok := args.ByName("key")
	if !ok || v != "value" {
		t.Fatalf("ByName(key) = (%v, %v), want (value, true)", v, ok)
	}
	if _, ok := args.ByName("missing"); ok {
		t.Fatal("ByName(missing) = ok, want not found")
	}
}

func TestEntityToStringFormatsEachShape(t *testing.T) {
	cases := []struct {
		name   string
		entity Entity
		want   string
	}{
		{"class", StringEntity("Logger"), "Logger()"},
		{"reference", RefEntity{Ref: NameRef("logger")}, "@logger"},
		{"static method", CallableEntity{Head: ClassHead("Factory"), Member: "create"}, "Factory::create()"},
		{"global function", CallableEntity{Head: GlobalHead{}, Member: "buildThing"}, "buildThing()"},
		{"ref method", CallableEntity{Head: RefHead{Ref: NameRef("factory")}, Member: "create"}, "@factory::create()"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := EntityToString(tc.entity); got != tc.want {
				t.Fatalf("EntityToString() = %q, want %q", got, tc.want)
			}
		})
	}
}

func TestReferenceStringForms(t *testing.T) {
	if got := Self().String(); got != "@self" {
		t.Fatalf("Self().String() = %q, want @self", got)
	}
	if got := NameRef("logger").String(); got != "@logger" {
		t.Fatalf("NameRef(logger).String() = %q, want @logger", got)
	}
	if got := TypeRef("Logger").String(); got != "Logger" {
		t.Fatalf("TypeRef(Logger).String() = %q, want Logger", got)
	}
}

func TestNewStatementBuildsPositionalArguments(t *testing.T) {
	stmt := NewStatement(StringEntity("Widget"), 1, "two", true)
	if len(stmt.Args) != 3 {
		t.Fatalf("len(Args) = %d, want 3", len(stmt.Args))
	}
	for _, arg := range stmt.Args {
		if arg.Name != "" {
			t.Fatalf("arg.Name = %q, want empty for a positional-only constructor", arg.Name)
		}
	}
}
