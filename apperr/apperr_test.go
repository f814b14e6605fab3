package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		kind Kind
		want int
	}{
		{Validation, http.StatusBadRequest},
		{Unauthorized, http.StatusUnauthorized},
		{Forbidden, http.StatusForbidden},
		{NotFound, http.StatusNotFound},
		{Conflict, http.StatusConflict},
		{Internal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := HTTPStatus(New(tt.kind, "boom")); got != tt.want {
			t.Errorf("HTTPStatus(kind %d) = %d, want %d", tt.kind, got, tt.want)
		}
	}
}

func TestUnclassifiedErrorIsInternal(t *testing.T) {
	err := fmt.Errorf("some driver error")
	if got := KindOf(err); got != Internal {
		t.Errorf("KindOf(plain error) = %v, want Internal", got)
	}
	if got := HTTPStatus(err); got != http.StatusInternalServerError {
		t.Errorf("HTTPStatus(plain error) = %d, want 500", got)
	}
}

func TestWrapPreservesKind(t *testing.T) {
	inner := New(NotFound, "expense missing")
	wrapped := Wrap(inner, Internal, "lookup failed")
	if got := KindOf(wrapped); got != NotFound {
		t.Errorf("KindOf(wrapped) = %v, want NotFound", got)
	}
	if !errors.Is(wrapped, inner) {
		t.Error("wrapped error does not unwrap to the inner error")
	}
}

func TestWrapClassifiesPlainError(t *testing.T) {
	inner := fmt.Errorf("sum mismatch")
	wrapped := Wrap(inner, Validation, "invalid split")
	if got := KindOf(wrapped); got != Validation {
		t.Errorf("KindOf(wrapped) = %v, want Validation", got)
	}
	if wrapped.Error() != "invalid split: sum mismatch" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
}
