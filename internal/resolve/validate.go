package resolve

import (
	"path/filepath"
	"strings"

	"github.com/fwdslsh/unify-sub011/internal/errors"
)

// ValidateAndContain normalizes p and verifies it does not escape sourceRoot.
// The returned path is absolute and cleaned. A path outside the root yields a
// PathTraversalError, which callers must always propagate.
func ValidateAndContain(p, sourceRoot string) (string, error) {
	absRoot, err := filepath.Abs(sourceRoot)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "resolve source root")
	}
	absPath, err := filepath.Abs(p)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "resolve path")
	}

	rel, err := filepath.Rel(absRoot, absPath)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", &errors.PathTraversalError{Path: absPath, SourceRoot: absRoot}
	}
	return absPath, nil
}
