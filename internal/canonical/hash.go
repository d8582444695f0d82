package canonical

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// ComputeHash returns the hex SHA-256 digest over the raw bytes of all
// canonical documents, concatenated in sorted file-name order. Missing files
// contribute nothing; a changed byte anywhere changes the digest.
func ComputeHash(stateDir string) (string, error) {
	names := make([]string, len(DocumentFiles))
	copy(names, DocumentFiles)
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(stateDir, name))
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", name, err)
		}
		h.Write(data)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
