package errors

import (
	"fmt"
	"strings"
)

// NotFoundError reports an import reference that resolved to no file.
// Recoverable: the caller normally downgrades it to a warning and leaves a
// comment marker at the failure site.
type NotFoundError struct {
	Reference string
	LastDir   string
}

func (e *NotFoundError) Error() string {
	if e.LastDir != "" {
		return fmt.Sprintf("import target not found: %q (last searched %s)", e.Reference, e.LastDir)
	}
	return fmt.Sprintf("import target not found: %q", e.Reference)
}

// CircularImportError is fatal for the page being composed. Chain holds every
// node in the cycle, outermost first, ending with the path that closed it.
type CircularImportError struct {
	Chain []string
}

func (e *CircularImportError) Error() string {
	return "circular import detected: " + strings.Join(e.Chain, " -> ")
}

// MalformedMarkupError reports unbalanced tags found during boundary
// extraction. Recoverable: the offending directive degrades to not-found.
type MalformedMarkupError struct {
	Path string
	Tag  string
}

func (e *MalformedMarkupError) Error() string {
	return fmt.Sprintf("unbalanced markup in %s: no matching close tag for <%s>", e.Path, e.Tag)
}

// PathTraversalError is security-relevant and always propagated; it is never
// downgraded to a warning, regardless of fail-fast configuration.
type PathTraversalError struct {
	Path       string
	SourceRoot string
}

func (e *PathTraversalError) Error() string {
	return fmt.Sprintf("path %q escapes source root %q", e.Path, e.SourceRoot)
}

// HeadMergeError reports malformed head markup. Recoverable: the offending
// fragment's head contribution is skipped.
type HeadMergeError struct {
	Origin string
	Cause  error
}

func (e *HeadMergeError) Error() string {
	return fmt.Sprintf("head merge failed for %s: %v", e.Origin, e.Cause)
}

func (e *HeadMergeError) Unwrap() error { return e.Cause }
