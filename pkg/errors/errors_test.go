package errors

import (
	"fmt"
	"net/http"
	"testing"
)

func TestWrapPreservesCause(t *testing.T) {
	cause := fmt.Errorf("connection refused")
	err := Wrap(CodeDependency, cause, "redis unavailable")

	if err.Unwrap() != cause {
		t.Fatalf("expected cause to be preserved")
	}
	if err.Code() != CodeDependency {
		t.Fatalf("expected dependency code, got %s", err.Code())
	}
}

func TestWrapNilCause(t *testing.T) {
	err := Wrap(CodeNotFound, nil, "notification not found")
	if err.Unwrap() != nil {
		t.Fatal("expected nil cause")
	}
	if err.Code() != CodeNotFound {
		t.Fatalf("unexpected code %s", err.Code())
	}
}

func TestAsUnwrapsNestedError(t *testing.T) {
	inner := New(CodeValidation, "title required")
	outer := fmt.Errorf("create notification: %w", inner)

	typed := As(outer)
	if typed == nil {
		t.Fatal("expected typed error")
	}
	if typed.Code() != CodeValidation {
		t.Fatalf("unexpected code %s", typed.Code())
	}
}

func TestAsForeignError(t *testing.T) {
	if As(fmt.Errorf("plain")) != nil {
		t.Fatal("expected nil for non-coded error")
	}
}

func TestIsCode(t *testing.T) {
	err := New(CodeForbidden, "not the owner")
	if !IsCode(err, CodeForbidden) {
		t.Fatal("expected forbidden match")
	}
	if IsCode(err, CodeNotFound) {
		t.Fatal("unexpected not found match")
	}
	if IsCode(nil, CodeNotFound) {
		t.Fatal("nil error should never match")
	}
}

func TestMetadataForUnknownCode(t *testing.T) {
	meta := MetadataFor(Code("SOMETHING_ELSE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestErrorString(t *testing.T) {
	err := New(CodeValidation, "message too long")
	want := "VALIDATION_ERROR: message too long"
	if err.Error() != want {
		t.Fatalf("got %q want %q", err.Error(), want)
	}
}
