// Package resolve maps import references (absolute, relative, or bare short
// names) to concrete fragment files under a source root.
package resolve

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwdslsh/unify-sub011/internal/errors"
	"github.com/fwdslsh/unify-sub011/internal/logfields"
)

// IncludesDir is the conventional shared-includes directory checked as the
// final short-name fallback.
const IncludesDir = "_includes"

// Resolve finds the fragment file a reference names, relative to the file the
// reference appears in. The returned path is absolute and validated against
// the source root.
//
// Reference forms:
//   - leading "/"      resolved under sourceRoot
//   - leading "./" ".." resolved against hostFile's directory
//   - bare short name   searched by precedence: exact name.html/.htm, then
//     _name.html/.htm, then _name.layout.html/.htm, per directory, walking
//     the host directory up to sourceRoot, then _includes/ at sourceRoot.
func Resolve(reference, hostFile, sourceRoot string) (string, error) {
	if reference == "" {
		return "", &errors.NotFoundError{Reference: reference, LastDir: filepath.Dir(hostFile)}
	}

	switch {
	case strings.HasPrefix(reference, "/"):
		p := filepath.Join(sourceRoot, filepath.FromSlash(reference))
		return checkCandidate(p, reference, sourceRoot)
	case strings.HasPrefix(reference, "./") || strings.HasPrefix(reference, "../"):
		p := filepath.Join(filepath.Dir(hostFile), filepath.FromSlash(reference))
		return checkCandidate(p, reference, sourceRoot)
	case strings.ContainsAny(reference, "/\\") || filepath.Ext(reference) != "":
		// Path-like or extensioned references resolve like relative ones.
		p := filepath.Join(filepath.Dir(hostFile), filepath.FromSlash(reference))
		return checkCandidate(p, reference, sourceRoot)
	}

	return resolveShortName(reference, hostFile, sourceRoot)
}

func checkCandidate(p, reference, sourceRoot string) (string, error) {
	contained, err := ValidateAndContain(p, sourceRoot)
	if err != nil {
		return "", err
	}
	if fileExists(contained) {
		return contained, nil
	}
	return "", &errors.NotFoundError{Reference: reference, LastDir: filepath.Dir(contained)}
}

// shortNameCandidates lists the filenames tried for a short name in one
// directory, highest precedence first.
func shortNameCandidates(name string) []string {
	return []string{
		name + ".html",
		name + ".htm",
		"_" + name + ".html",
		"_" + name + ".htm",
		"_" + name + ".layout.html",
		"_" + name + ".layout.htm",
	}
}

func resolveShortName(name, hostFile, sourceRoot string) (string, error) {
	root, err := filepath.Abs(sourceRoot)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryFileSystem, errors.SeverityError, "resolve source root")
	}

	dir := filepath.Dir(hostFile)
	lastDir := dir
	for {
		if p, ok := searchDir(dir, name); ok {
			return ValidateAndContain(p, root)
		}
		lastDir = dir
		if sameDir(dir, root) {
			break
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			// Host escaped the root; stop rather than walk the whole filesystem.
			break
		}
		dir = parent
	}

	includes := filepath.Join(root, IncludesDir)
	if p, ok := searchDir(includes, name); ok {
		return ValidateAndContain(p, root)
	}

	slog.Debug("Short-name reference did not resolve",
		logfields.Reference(name), slog.String("last_dir", lastDir))
	return "", &errors.NotFoundError{Reference: name, LastDir: includes}
}

func searchDir(dir, name string) (string, bool) {
	for _, candidate := range shortNameCandidates(name) {
		p := filepath.Join(dir, candidate)
		if fileExists(p) {
			return p, true
		}
	}
	return "", false
}

func sameDir(a, b string) bool {
	aa, err1 := filepath.Abs(a)
	bb, err2 := filepath.Abs(b)
	if err1 != nil || err2 != nil {
		return a == b
	}
	return aa == bb
}

func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
