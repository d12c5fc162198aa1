package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/mod/modfile"
)

// BuildConfig builds a Config from go.mod and the //dicore: directives on
// a dicore.go convention file at the module root, if one exists.
func BuildConfig(moduleRoot string) (*Config, error) {
	module, err := parseModulePath(moduleRoot)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Module: module,
		Scan:   []string{"internal/...", "pkg/..."},
	}
	applyDirectives(moduleRoot, cfg)
	return cfg, nil
}

func parseModulePath(root string) (string, error) {
	path := filepath.Join(root, "go.mod")
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read go.mod: %w", err)
	}
	f, err := modfile.Parse(path, data, nil)
	if err != nil {
		return "", fmt.Errorf("parse go.mod: %w", err)
	}
	if f.Module == nil {
		return "", fmt.Errorf("module directive not found in go.mod")
	}
	return f.Module.Mod.Path, nil
}

// applyDirectives reads dicore.go at the module root, if present, and
// applies its //dicore: scan/exclude/strict directives to cfg. A missing
// file just means "use the default conventions".
func applyDirectives(root string, cfg *Config) {
	data, err := os.ReadFile(filepath.Join(root, "dicore.go"))
	if err != nil {
		return
	}

	var scan, exclude []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "//dicore:") {
			continue
		}
		directive := strings.TrimPrefix(line, "//dicore:")
		parts := strings.Fields(directive)
		if len(parts) == 0 {
			continue
		}
		switch parts[0] {
		case "scan":
			scan = append(scan, parts[1:]...)
		case "exclude":
			exclude = append(exclude, parts[1:]...)
		case "strict":
			cfg.StrictWarnings = true
		}
	}
	if len(scan) > 0 {
		cfg.Scan = scan
	}
	cfg.Exclude = append(cfg.Exclude, exclude...)
}
