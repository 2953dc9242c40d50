package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestMetadataForKnownCodes(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:    http.StatusBadRequest,
		CodeNotFound:      http.StatusNotFound,
		CodeStockExceeded: http.StatusConflict,
		CodeEmptyBasket:   http.StatusUnprocessableEntity,
		CodeDependency:    http.StatusServiceUnavailable,
	}
	for code, status := range cases {
		if got := MetadataFor(code).HTTPStatus; got != status {
			t.Fatalf("code %s: expected status %d, got %d", code, status, got)
		}
	}
}

func TestMetadataForUnknownCodeFallsBackToInternal(t *testing.T) {
	meta := MetadataFor(Code("NOPE"))
	if meta.HTTPStatus != http.StatusInternalServerError {
		t.Fatalf("expected internal fallback, got %d", meta.HTTPStatus)
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stdErrors.New("boom")
	err := Wrap(CodeDependency, cause, "saving basket")

	if !stdErrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to survive errors.Is")
	}
	if typed := As(fmt.Errorf("outer: %w", err)); typed == nil || typed.Code() != CodeDependency {
		t.Fatalf("expected dependency code through wrapping, got %v", typed)
	}
}

func TestAsReturnsNilForPlainErrors(t *testing.T) {
	if As(stdErrors.New("plain")) != nil {
		t.Fatal("expected nil for untyped error")
	}
	if As(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeInternal, stdErrors.New("root"), "wrapped")
	dump := Dump(err)
	if dump.Code != CodeInternal {
		t.Fatalf("expected internal code, got %s", dump.Code)
	}
	if len(dump.Chain) < 2 {
		t.Fatalf("expected at least two chain entries, got %d", len(dump.Chain))
	}
}
