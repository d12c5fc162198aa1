// Package dicore implements the resolution core of a dependency-injection
// container builder: given a registry of service definitions written in a
// symbolic description language, it infers a concrete type for every
// service, normalizes and type-checks every construction/invocation
// statement, and fills in missing constructor/method arguments by
// autowiring — matching parameter types to other services in the registry.
//
// The core runs in two strict phases driven by one caller:
//
//  1. Resolver.ResolveDefinition assigns a concrete type to every
//     definition, recursing through references as needed and detecting
//     cycles.
//  2. Resolver.CompleteDefinition normalizes and argument-completes every
//     statement a definition's creator and setup reference.
//
// Code generation, container evaluation, and configuration-file loading are
// not part of this package; they are external collaborators that consume a
// Registry of fully resolved and completed Definitions.
package dicore
