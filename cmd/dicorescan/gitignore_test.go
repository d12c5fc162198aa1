package main

import "testing"

func TestIsGitignoredBasicPatterns(t *testing.T) {
	patterns := []GitignorePattern{
		{Pattern: "vendor"},
		{Pattern: "*.gen.go"},
		{Pattern: "build", DirOnly: true},
	}
	cases := map[string]bool{
		"vendor/foo/bar.go":    true,
		"internal/foo.gen.go":  true,
		"internal/foo.go":      false,
		"build/output.txt":     true,
		"internal/build/x.txt": true,
	}
	for path, want := range cases {
		if got := IsGitignored(path, patterns); got != want {
			t.Errorf("IsGitignored(%q) = %v, want %v", path, got, want)
		}
	}
}

func TestIsGitignoredNegation(t *testing.T) {
	patterns := []GitignorePattern{
		{Pattern: "*.log"},
		{Pattern: "important.log", Negation: true},
	}
	if IsGitignored("important.log", patterns) {
		t.Fatal("IsGitignored(important.log) = true, want false (negated)")
	}
	if !IsGitignored("other.log", patterns) {
		t.Fatal("IsGitignored(other.log) = false, want true")
	}
}
