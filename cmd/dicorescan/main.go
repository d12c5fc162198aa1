// Command dicorescan discovers annotated service constructors in a Go
// module, resolves their dependency graph with dicore's two-phase
// pipeline, and prints a resolution report.
//
// Discovery flow:
//
//  1. Read go.mod → module path.
//  2. Read dicore.go → //dicore:scan/exclude/strict directives.
//  3. Load the scanned packages with go/types, via internal/gotypesuniverse.
//  4. Walk their syntax for New* constructors → one ServiceProvider each.
//  5. Register one dicore.Definition per provider and run dicore.Resolver.
//  6. Print what was wired, what warnings were recorded, and any entrypoints.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	"github.com/arborist-di/dicore/dicore"
	"github.com/arborist-di/dicore/internal/gotypesuniverse"
)

func main() {
	verbose := flag.Bool("verbose", false, "enable verbose logging")
	strict := flag.Bool("strict", false, "treat unresolved required dependencies as hard errors")
	flag.Parse()

	moduleRoot, err := findModuleRoot()
	if err != nil {
		log.Fatalf("dicorescan: %v", err)
	}

	cfg, err := BuildConfig(moduleRoot)
	if err != nil {
		log.Fatalf("dicorescan: %v", err)
	}
	if *strict {
		cfg.StrictWarnings = true
	}

	if *verbose {
		fmt.Fprintf(os.Stderr, "dicorescan: module=%s root=%s\n", cfg.Module, moduleRoot)
	}

	patterns := buildPatterns(cfg)
	universe, err := gotypesuniverse.Load(moduleRoot, patterns)
	if err != nil {
		log.Fatalf("dicorescan: load: %v", err)
	}

	gitignore := LoadGitignore(moduleRoot)
	scanner := NewScanner(cfg, universe, gitignore)
	providers, err := scanner.Scan()
	if err != nil {
		log.Fatalf("dicorescan: scan: %v", err)
	}
	if *verbose {
		fmt.Fprintf(os.Stderr, "dicorescan: discovered %d service providers\n", len(providers))
	}

	registry := dicore.NewBasicRegistry(universe)
	for _, p := range providers {
		def := dicore.NewStatementDefinition(p.ClassName, dicore.NewStatement(dicore.StringEntity(p.ClassName)))
		for _, tag := range AnnotationValues(p.Annotations, AnnotTag) {
			def.AddTag(tag)
		}
		if err := registry.AddDefinition(def); err != nil {
			if *verbose {
				fmt.Fprintf(os.Stderr, "dicorescan: %v\n", err)
			}
			continue
		}
	}

	resolver := dicore.NewResolver(registry, universe)
	resolver.StrictWarnings = cfg.StrictWarnings
	if err := resolver.ResolveAll(); err != nil {
		log.Fatalf("dicorescan: resolve: %v", err)
	}

	printReport(registry, resolver, providers, universe, *verbose)
}

func printReport(registry *dicore.BasicRegistry, resolver *dicore.Resolver, providers []ServiceProvider, universe *gotypesuniverse.Universe, verbose bool) {
	defs := registry.Definitions()
	sort.Slice(defs, func(i, j int) bool { return defs[i].Name() < defs[j].Name() })

	fmt.Printf("dicorescan: resolved %d services\n", len(defs))
	for _, def := range defs {
		stmt := def.Statement()
		fmt.Printf("  %s\n", def.Descriptor())
		if verbose && stmt != nil {
			for _, arg := range stmt.Args {
				if arg.Name != "" {
					fmt.Printf("    %s: %v\n", arg.Name, formatArgValue(arg.Value))
				} else {
					fmt.Printf("    %v\n", formatArgValue(arg.Value))
				}
			}
		}
	}

	entries := FindEntrypoints(providers, universe)
	if len(entries) > 0 {
		fmt.Printf("dicorescan: %d entrypoints\n", len(entries))
		for _, e := range entries {
			status := "runnable"
			if !e.Runnable {
				status = "missing Run(ctx) error"
			}
			fmt.Printf("  %s (%s)\n", e.ClassName, status)
		}
	}

	if warnings := resolver.Warnings(); len(warnings) > 0 {
		fmt.Printf("dicorescan: %d warnings\n", len(warnings))
		for _, w := range warnings {
			fmt.Printf("  %s\n", w)
		}
	}
}

func formatArgValue(v any) any {
	if ref, ok := v.(dicore.Reference); ok {
		return ref.String()
	}
	return v
}

func buildPatterns(cfg *Config) []string {
	var patterns []string
	for _, scan := range cfg.Scan {
		patterns = append(patterns, cfg.Module+"/"+trimDotSlash(scan))
	}
	return patterns
}

func trimDotSlash(s string) string {
	if len(s) >= 2 && s[0] == '.' && s[1] == '/' {
		return s[2:]
	}
	return s
}

func findModuleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("getwd: %w", err)
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", fmt.Errorf("go.mod not found in any parent directory")
}
