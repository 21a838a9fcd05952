// Package checksum computes content digests of raw source files. The
// digest is the dedup identity of a file: identical bytes hash identically
// whatever the file is named or where it lives.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// FileFunc computes the hex digest of a file's bytes.
type FileFunc func(filePath string) (string, error)

// SHA256File computes the SHA-256 digest of a file's content.
func SHA256File(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file %s: %w", filePath, err)
	}
	defer file.Close()

	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", fmt.Errorf("failed to hash content of file %s: %w", filePath, err)
	}

	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// ForAlgorithm returns the FileFunc for a configured algorithm name.
func ForAlgorithm(name string) (FileFunc, error) {
	switch name {
	case "sha256":
		return SHA256File, nil
	case "xxhash64":
		return XXHash64File, nil
	default:
		return nil, fmt.Errorf("unknown checksum algorithm %q", name)
	}
}
