package dicore

import "testing"

func TestBasicRegistryMethodNameFoldsSeparators(t *testing.T) {
	r := NewBasicRegistry(NewFakeUniverse())
	tests := map[string]string{
		"logger":        "Logger",
		"app.logger":    "AppLogger",
		"app_logger":    "AppLogger",
		"app-logger":    "AppLogger",
		"sub.app.cache": "SubAppCache",
	}
	for in, want := range tests {
		if got := r.MethodName(in); got != want {
			t.Fatalf("MethodName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBasicRegistryAddDependencyAccumulates(t *testing.T) {
	r := NewBasicRegistry(NewFakeUniverse())
	r.AddDependency("app", "Logger")
	r.AddDependency("app", "Cache")
	got := r.Dependencies("app")
	if len(got) != 2 || got[0] != "Logger" || got[1] != "Cache" {
		t.Fatalf("Dependencies(app) = %#v, want [Logger Cache] in insertion order", got)
	}
}
