package dicore

import (
	"errors"
	"strings"
	"testing"
)

func TestCompleteExceptionPrefixesDescriptorOnce(t *testing.T) {
	def := NewStatementDefinition("logger", nil)
	def.SetType("Logger")

	err := classNotFoundError("Logger")
	wrapped := completeException(err, def)
	if !strings.HasPrefix(wrapped.Error(), "[Service 'logger' of type 'Logger']") {
		t.Fatalf("completeException() = %q, want a bracketed descriptor prefix", wrapped.Error())
	}

	twice := completeException(wrapped, def)
	if twice.Error() != wrapped.Error() {
		t.Fatalf("completeException() is not idempotent: %q != %q", twice.Error(), wrapped.Error())
	}
}

func TestCompleteExceptionStripsQualifiedClassPrefix(t *testing.T) {
	def := NewStatementDefinition("svc", nil)
	err := methodNotCallableError(`App\Services\Factory`, "build")
	wrapped := completeException(err, def)
	if strings.Contains(wrapped.Error(), `App\Services\Factory`) {
		t.Fatalf("completeException() = %q, want the namespace prefix stripped", wrapped.Error())
	}
	if !strings.Contains(wrapped.Error(), "Factory::build") {
		t.Fatalf("completeException() = %q, want Factory::build to remain", wrapped.Error())
	}
}

func TestCompleteExceptionUnwrapsToOriginal(t *testing.T) {
	def := NewStatementDefinition("svc", nil)
	original := classNotFoundError("Widget")
	wrapped := completeException(original, def)

	var target *ServiceCreationException
	if !errors.As(wrapped, &target) {
		t.Fatalf("errors.As() found nothing, want to unwrap to *ServiceCreationException")
	}
	if target != original {
		t.Fatalf("errors.As() target = %v, want the original error", target)
	}
}

func TestWithRelatedToAppendsOnceAndRespectsSetupFlag(t *testing.T) {
	err := classNotFoundError("Widget")
	decorated := withRelatedTo(err, StringEntity("App"), true)
	if !strings.Contains(decorated.Error(), "Related to App()") {
		t.Fatalf("withRelatedTo() = %q, want a Related-to suffix", decorated.Error())
	}
	if !strings.Contains(decorated.Error(), "in setup") {
		t.Fatalf("withRelatedTo() = %q, want the in-setup qualifier", decorated.Error())
	}

	again := withRelatedTo(decorated, StringEntity("Other"), false)
	if again.Error() != decorated.Error() {
		t.Fatalf("withRelatedTo() is not idempotent: %q != %q", again.Error(), decorated.Error())
	}
}

func TestMissingServiceExceptionIsDistinguishable(t *testing.T) {
	err := missingServiceError("Service of type '%s' not found.", "Logger")
	var target *MissingServiceException
	if !errors.As(err, &target) {
		t.Fatalf("errors.As() found nothing, want *MissingServiceException")
	}
}
