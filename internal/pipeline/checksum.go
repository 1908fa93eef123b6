package pipeline

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// FilesChecksum fingerprints a set of input files by name and content.
func FilesChecksum(paths []string) (string, error) {
	digest := xxhash.New()
	for _, path := range paths {
		if err := hashFile(digest, path); err != nil {
			return "", err
		}
	}
	return hex.EncodeToString(digest.Sum(nil)), nil
}

func hashFile(digest *xxhash.Digest, path string) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", path, err)
	}
	defer file.Close()

	_, _ = digest.WriteString(filepath.Base(path))
	_, _ = digest.Write([]byte{0})
	if _, err := io.Copy(digest, file); err != nil {
		return fmt.Errorf("failed to hash file %s: %w", path, err)
	}
	return nil
}
