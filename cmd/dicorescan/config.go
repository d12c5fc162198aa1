package main

// Config holds dicorescan's configuration, populated from go.mod and the
// //dicore: directives found on a project's service declaration file.
type Config struct {
	Module  string
	Scan    []string
	Exclude []string

	// StrictWarnings propagates to dicore.Resolver: an unresolved required
	// autowired parameter becomes a hard error instead of a warning.
	StrictWarnings bool
}
