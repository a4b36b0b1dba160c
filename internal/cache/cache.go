// Package cache provides the persistent content-hash cache used to skip
// recomposing unchanged pages. The build must remain correct with a nil
// cache: cold cache means every page recomposes.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
)

// HashBytes returns the hex sha256 of content.
func HashBytes(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

// HashFile returns the hex sha256 of the file at path.
func HashFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return HashBytes(data), nil
}
