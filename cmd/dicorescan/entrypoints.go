package main

import "github.com/arborist-di/dicore/internal/gotypesuniverse"

// Entrypoint is a service explicitly marked //dicore:entry: a type this
// tool's report calls out as a root of the dependency graph rather than a
// dependency of something else, the way the teacher tool's command
// detector singled out cmd/ packages — but decided here by an explicit
// directive instead of by sniffing for a spf13/cobra-shaped Command()
// method, since this project carries no cobra dependency to detect against.
type Entrypoint struct {
	ClassName string
	Runnable  bool
}

// FindEntrypoints returns one Entrypoint per provider annotated
// //dicore:entry, noting whether its class exposes a public Run method
// (the Run(ctx) error convention this tool's own report treats as "this
// can be started").
func FindEntrypoints(providers []ServiceProvider, universe *gotypesuniverse.Universe) []Entrypoint {
	var out []Entrypoint
	for _, p := range providers {
		if !HasAnnotation(p.Annotations, AnnotEntry) {
			continue
		}
		_, runnable := universe.Method(p.ClassName, "Run")
		out = append(out, Entrypoint{ClassName: p.ClassName, Runnable: runnable})
	}
	return out
}
