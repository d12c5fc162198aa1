package main

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

// GitignorePattern is a single parsed line of a .gitignore file.
type GitignorePattern struct {
	Pattern  string
	Negation bool
	DirOnly  bool
}

// LoadGitignore parses .gitignore at the module root, returning nil if
// there isn't one.
func LoadGitignore(root string) []GitignorePattern {
	path := filepath.Join(root, ".gitignore")
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	var patterns []GitignorePattern
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		p := GitignorePattern{}
		if strings.HasPrefix(line, "!") {
			p.Negation = true
			line = line[1:]
		}
		if strings.HasSuffix(line, "/") {
			p.DirOnly = true
			line = strings.TrimSuffix(line, "/")
		}
		p.Pattern = line
		patterns = append(patterns, p)
	}
	return patterns
}

// IsGitignored reports whether relPath matches any pattern, applying
// negations in file order.
func IsGitignored(relPath string, patterns []GitignorePattern) bool {
	relPath = filepath.ToSlash(relPath)

	ignored := false
	for _, p := range patterns {
		if matchGitignore(relPath, p.Pattern) {
			ignored = !p.Negation
		}
	}
	return ignored
}

func matchGitignore(path, pattern string) bool {
	if strings.HasPrefix(pattern, "/") {
		pattern = pattern[1:]
		matched, _ := filepath.Match(pattern, path)
		return matched
	}

	if strings.Contains(pattern, "/") {
		matched, _ := filepath.Match(pattern, path)
		if matched {
			return true
		}
		return strings.HasPrefix(path, pattern+"/") || strings.HasPrefix(path, pattern)
	}

	base := filepath.Base(path)
	if matched, _ := filepath.Match(pattern, base); matched {
		return true
	}
	for _, part := range strings.Split(path, "/") {
		if matched, _ := filepath.Match(pattern, part); matched {
			return true
		}
	}
	return false
}
