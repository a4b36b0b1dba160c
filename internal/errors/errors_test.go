package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestUnifyErrorFormatting(t *testing.T) {
	e := New(CategoryResolve, SeverityWarning, "missing target")
	if got := e.Error(); got != "resolve (warning): missing target" {
		t.Errorf("unexpected message: %q", got)
	}

	wrapped := Wrap(errors.New("boom"), CategoryCompose, SeverityFatal, "expand failed")
	if got := wrapped.Error(); got != "compose (fatal): expand failed: boom" {
		t.Errorf("unexpected wrapped message: %q", got)
	}
	if !errors.Is(wrapped, wrapped.Cause) {
		t.Error("Unwrap should expose the cause")
	}
}

func TestUnifyErrorContext(t *testing.T) {
	e := New(CategoryMarkup, SeverityWarning, "odd tag").WithContext("page", "index.html")
	if e.Context["page"] != "index.html" {
		t.Errorf("context not recorded: %v", e.Context)
	}
}

func TestCircularImportErrorNamesChain(t *testing.T) {
	e := &CircularImportError{Chain: []string{"a.html", "b.html", "a.html"}}
	want := "circular import detected: a.html -> b.html -> a.html"
	if e.Error() != want {
		t.Errorf("got %q, want %q", e.Error(), want)
	}
}

func TestTaxonomyErrorsAs(t *testing.T) {
	var nf *NotFoundError
	err := fmt.Errorf("wrapped: %w", &NotFoundError{Reference: "card", LastDir: "/src"})
	if !errors.As(err, &nf) {
		t.Fatal("errors.As should find NotFoundError")
	}
	if nf.Reference != "card" {
		t.Errorf("unexpected reference %q", nf.Reference)
	}

	var trav *PathTraversalError
	err = fmt.Errorf("wrapped: %w", &PathTraversalError{Path: "/etc/passwd", SourceRoot: "/src"})
	if !errors.As(err, &trav) {
		t.Fatal("errors.As should find PathTraversalError")
	}
}
