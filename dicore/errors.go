package dicore

import (
	"fmt"
	"regexp"
	"strings"
)

// ServiceCreationException is the catch-all error kind raised whenever a
// definition's type, statement, or arguments cannot be resolved. It is the
// Go analogue of the source specification's mutable-message exception: it
// carries a structured cause instead of mutating in place, and only the
// Phase 1/2 boundary functions (ResolveDefinition, CompleteDefinition,
// CompleteStatement) decorate it with context.
type ServiceCreationException struct {
	Message string
	Cause   error
}

func (e *ServiceCreationException) Error() string { return e.Message }
func (e *ServiceCreationException) Unwrap() error  { return e.Cause }

// MissingServiceException means a requested service/type has no candidate
// in the registry. autowireByType treats this as "not provided" for an
// optional parameter and as a nil placeholder plus a warning for a required
// one; anywhere else it propagates.
type MissingServiceException struct {
	Message string
}

func (e *MissingServiceException) Error() string { return e.Message }

// NotAllowedDuringResolvingException means the registry cannot yet answer a
// getByType query because Phase 1 hasn't finished for every candidate.
// normalizeReference treats this as "come back later": the type name is
// returned as a Name(name) reference instead of an error.
type NotAllowedDuringResolvingException struct {
	Message string
}

func (e *NotAllowedDuringResolvingException) Error() string { return e.Message }

// InvalidArgumentError is raised by the placeholder-expansion helpers
// (ParameterPlaceholderMissing, NonScalarConcat, CircularPlaceholder), which
// spec §7 calls out as the one family of errors that is not a
// ServiceCreationException.
type InvalidArgumentError struct {
	Message string
}

func (e *InvalidArgumentError) Error() string { return e.Message }

// ContextualError is the "distinct context wrapper" the resolver's Phase
// 1/2 boundaries produce: it never mutates the wrapped error, it just adds
// the bracketed descriptor (and, for CompleteStatement, the "Related to …"
// suffix) in front of it.
type ContextualError struct {
	Message string
	Cause   error
}

func (e *ContextualError) Error() string { return e.Message }
func (e *ContextualError) Unwrap() error  { return e.Cause }

func newServiceCreationError(format string, args ...any) *ServiceCreationException {
	return &ServiceCreationException{Message: fmt.Sprintf(format, args...)}
}

func circularReferenceError(names []string) error {
	return newServiceCreationError("Circular reference detected for services: %s.", strings.Join(names, ", "))
}

func unknownServiceTypeError(descriptor string) error {
	return newServiceCreationError("Type of service '%s' is unknown.", descriptor)
}

func classNotFoundError(class string) error {
	return newServiceCreationError("Class '%s' not found.", class)
}

func interfaceInsteadOfClassError(name string) error {
	return newServiceCreationError("'%s' is an interface, did you mean 'implement'?", name)
}

func classIsAbstractError(class string) error {
	return newServiceCreationError("Class '%s' is abstract.", class)
}

func nonPublicConstructorError(class string) error {
	return newServiceCreationError("Class '%s' has not a public constructor.", class)
}

func nonPublicMethodError(class, method string) error {
	return newServiceCreationError("Method '%s::%s' is not public.", class, method)
}

func traitMethodNotStaticError(class, method string) error {
	return newServiceCreationError("Method '%s::%s' is declared by a trait and is not static.", class, method)
}

func unexpectedConstructorArgsError(class string) error {
	return newServiceCreationError("Unable to pass arguments, class '%s' has no constructor.", class)
}

func methodNotCallableError(class, method string) error {
	return newServiceCreationError("Method '%s::%s' doesn't exist or is not callable.", class, method)
}

func functionNotFoundError(name string) error {
	return newServiceCreationError("Function '%s' doesn't exist.", name)
}

func badEntityNameError(member string) error {
	return newServiceCreationError("Expected function, method or property name, '%s' given.", member)
}

func argumentMismatchError(format string, args ...any) error {
	return newServiceCreationError(format, args...)
}

func intersectionTypeUnsupportedError(param string) error {
	return newServiceCreationError("Parameter $%s has an intersection type and must be specified explicitly.", param)
}

func unionWithoutDefaultError(param string) error {
	return newServiceCreationError("Parameter $%s has an unsupported union/mixed type and no default value.", param)
}

func unresolvedDependencyError(format string, args ...any) error {
	return newServiceCreationError(format, args...)
}

func missingServiceError(format string, args ...any) error {
	return &MissingServiceException{Message: fmt.Sprintf(format, args...)}
}

func notAllowedDuringResolvingError(format string, args ...any) error {
	return &NotAllowedDuringResolvingException{Message: fmt.Sprintf(format, args...)}
}

func serviceNotFoundError(name string) error {
	return newServiceCreationError("Service '%s' not found in definitions.", name)
}

func parameterPlaceholderMissingError(name string) error {
	return &InvalidArgumentError{Message: fmt.Sprintf("Missing parameter '%s'.", name)}
}

func nonScalarConcatError(v any) error {
	return &InvalidArgumentError{Message: fmt.Sprintf("Unable to concatenate non-scalar parameter of type %T into a string.", v)}
}

func circularPlaceholderError(chain []string) error {
	return &InvalidArgumentError{Message: fmt.Sprintf("Circular reference detected for parameters: %s.", strings.Join(dedupeChain(chain), ", "))}
}

func dedupeChain(chain []string) []string {
	seen := make(map[string]bool, len(chain))
	out := make([]string, 0, len(chain))
	for _, name := range chain {
		if seen[name] {
			continue
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

var qualifiedCallPattern = regexp.MustCompile(`([\w\\]+)::(\w+)`)

func stripQualifiedPrefixes(msg string) string {
	return qualifiedCallPattern.ReplaceAllStringFunc(msg, func(m string) string {
		sub := qualifiedCallPattern.FindStringSubmatch(m)
		class, method := sub[1], sub[2]
		if idx := strings.LastIndex(class, `\`); idx >= 0 {
			class = class[idx+1:]
		}
		return class + "::" + method
	})
}

// completeException implements spec §4.1 step 4 / §7: it prefixes the
// bracketed descriptor once, strips fully-qualified class prefixes for
// readability, and is idempotent — a message that already starts with
// "[Service " is passed through unchanged.
func completeException(err error, def Definition) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.HasPrefix(msg, "[Service ") {
		return err
	}
	wrapped := fmt.Sprintf("[%s]\n%s", def.Descriptor(), stripQualifiedPrefixes(msg))
	return &ContextualError{Message: wrapped, Cause: err}
}

// requiredByParam implements the autowireArgument re-throw rule (spec §7):
// a *ServiceCreationException surfaced while autowiring a parameter (as
// opposed to a *MissingServiceException, which is converted to "not
// provided" instead) is re-thrown naming the parameter it was required by.
func requiredByParam(err error, paramName string) error {
	return newServiceCreationError("%s\nRequired by $%s", err.Error(), paramName)
}

// withRelatedTo implements the CompleteStatement decoration rule (spec §4.1
// step 5): append "Related to <entity>" (and " in setup" when applicable)
// exactly once, guarded by whether the message already carries it.
func withRelatedTo(err error, entity Entity, inSetup bool) error {
	if err == nil {
		return nil
	}
	msg := err.Error()
	if strings.Contains(msg, "\nRelated to") {
		return err
	}
	suffix := fmt.Sprintf("\nRelated to %s", entityToString(entity, false))
	if inSetup {
		suffix += " in setup"
	}
	return &ContextualError{Message: msg + suffix, Cause: err}
}
