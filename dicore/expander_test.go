package dicore

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestExpandSubstitutesPlaceholders(t *testing.T) {
	params := map[string]any{
		"name": "world",
		"nested": map[string]any{
			"greeting": "hello",
		},
	}
	got, err := Expand("%nested.greeting%, %name%!", params, false)
	if err != nil {
		t.Fatalf("Expand() = %v", err)
	}
	if got != "hello, world!" {
		t.Fatalf("Expand() = %q, want %q", got, "hello, world!")
	}
}

func TestExpandWholeStringPlaceholderReturnsRawValue(t *testing.T) {
	params := map[string]any{"items": []any{"a", "b"}}
	got, err := Expand("%items%", params, false)
	if err != nil {
		t.Fatalf("Expand() = %v", err)
	}
	want := []any{"a", "b"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Expand() mismatch (-want +got):\n%s", diff)
	}
}

func TestExpandPropagatesDynamicParameterThroughConcatenation(t *testing.T) {
	params := map[string]any{
		"port": NewDynamicParameter("$cfg['port']"),
	}
	got, err := Expand("localhost:%port%", params, false)
	if err != nil {
		t.Fatalf("Expand() = %v", err)
	}
	dyn, ok := got.(DynamicParameter)
	if !ok {
		t.Fatalf("Expand() = %#v (%T), want DynamicParameter", got, got)
	}
	want := "'localhost:' . $cfg['port']"
	if dyn.Expr != want {
		t.Fatalf("Expand() expr = %q, want %q", dyn.Expr, want)
	}
}

func TestExpandDetectsCircularPlaceholder(t *testing.T) {
	params := map[string]any{
		"a": "%b%",
		"b": "%a%",
	}
	_, err := Expand("%a%", params, true)
	if err == nil {
		t.Fatal("Expand() = nil, want circular placeholder error")
	}
	if !strings.Contains(err.Error(), "Circular reference detected for parameters") {
		t.Fatalf("Expand() = %v, want a circular-parameter message", err)
	}
}

func TestExpandMissingPlaceholderIsAnError(t *testing.T) {
	_, err := Expand("%missing%", map[string]any{}, false)
	if err == nil {
		t.Fatal("Expand() = nil, want missing-placeholder error")
	}
}

func TestExpandRejectsNonScalarConcatenation(t *testing.T) {
	params := map[string]any{"list": []any{"a", "b"}}
	_, err := Expand("x=%list%,y", params, false)
	if err == nil {
		t.Fatal("Expand() = nil, want non-scalar concatenation error")
	}
}

func TestEscapeRoundTripsCleanStrings(t *testing.T) {
	for _, s := range []string{"hello", "plain text", "no-specials-here"} {
		escaped := Escape(s)
		got, err := Expand(escaped, map[string]any{}, false)
		if err != nil {
			t.Fatalf("Expand(Escape(%q)) = %v", s, err)
		}
		if got != s {
			t.Fatalf("Expand(Escape(%q)) = %q, want %q", s, got, s)
		}
	}
}

func TestEscapeDoublesPercentAndLeadingAt(t *testing.T) {
	if got := Escape("100%"); got != "100%%" {
		t.Fatalf("Escape(100%%) = %q, want 100%%%%", got)
	}
	if got := Escape("@service"); got != "@@service" {
		t.Fatalf("Escape(@service) = %q, want @@service", got)
	}
}
