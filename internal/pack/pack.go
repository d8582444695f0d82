// Package pack reads and writes memory packs: self-describing, checksummed,
// optionally zip-compressed directories that carry cache or session-memory
// contents between machines. A pack is a manifest.json, one JSONL or JSON
// file per exported table, and a checksums.json covering every data file
// plus the manifest.
package pack

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Supported manifest format version. Anything else is rejected outright.
const FormatVersion = "1.0"

// Pack types recorded in the manifest.
const (
	TypeSessionMemory = "session_memory"
	TypeCache         = "cache"
)

// Pack file names.
const (
	ManifestFile  = "manifest.json"
	ChecksumsFile = "checksums.json"
)

// Typed error kinds for pack handling. Integrity and version errors are
// always fatal to the import; no partial import is permitted.
var (
	// ErrNotFound indicates a missing pack, manifest, or pack file.
	ErrNotFound = errors.New("pack not found")

	// ErrUnsupportedVersion indicates a manifest format version mismatch.
	ErrUnsupportedVersion = errors.New("unsupported pack version")

	// ErrIntegrity indicates a checksum mismatch on a listed file.
	ErrIntegrity = errors.New("pack integrity check failed")
)

// Manifest describes a pack. CanonicalHash is set for cache packs,
// Namespaces for session-memory packs ("all" when unfiltered).
type Manifest struct {
	Version       string         `json:"version"`
	Type          string         `json:"type"`
	CreatedAt     string         `json:"created_at"`
	CanonicalHash string         `json:"canonical_hash,omitempty"`
	Namespaces    any            `json:"namespaces,omitempty"`
	Counts        map[string]int `json:"counts,omitempty"`
}

// WriteManifest writes the manifest into the pack directory and records its
// checksum.
func WriteManifest(dir string, manifest *Manifest, checksums map[string]string) error {
	data, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal manifest: %w", err)
	}

	path := filepath.Join(dir, ManifestFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write manifest: %w", err)
	}

	sum, err := ChecksumFile(path)
	if err != nil {
		return err
	}
	checksums[ManifestFile] = sum

	return nil
}

// ReadManifest reads and validates the pack manifest. A missing manifest is
// ErrNotFound; a version other than FormatVersion is ErrUnsupportedVersion.
func ReadManifest(dir string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: no %s in %s", ErrNotFound, ManifestFile, dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}
	if manifest.Version != FormatVersion {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedVersion, manifest.Version)
	}

	return &manifest, nil
}

// WriteChecksums writes the checksum map into the pack directory.
func WriteChecksums(dir string, checksums map[string]string) error {
	data, err := json.MarshalIndent(checksums, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checksums: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, ChecksumsFile), data, 0644); err != nil {
		return fmt.Errorf("failed to write checksums: %w", err)
	}
	return nil
}

// VerifyChecksums recomputes the hash of every file listed in the pack's
// checksums.json and returns ErrIntegrity on any mismatch. A pack with no
// checksum file passes (legacy packs); a listed-but-absent file is skipped,
// since absence of a table file means zero records, not corruption.
func VerifyChecksums(dir string) error {
	data, err := os.ReadFile(filepath.Join(dir, ChecksumsFile))
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read checksums: %w", err)
	}

	var checksums map[string]string
	if err := json.Unmarshal(data, &checksums); err != nil {
		return fmt.Errorf("failed to parse checksums: %w", err)
	}

	for name, expected := range checksums {
		path := filepath.Join(dir, name)
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			continue
		}
		actual, err := ChecksumFile(path)
		if err != nil {
			return err
		}
		if actual != expected {
			return fmt.Errorf("%w: checksum mismatch for %s", ErrIntegrity, name)
		}
	}

	return nil
}

// ChecksumFile returns the hex SHA-256 digest of a file's contents.
func ChecksumFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", filepath.Base(path), err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", filepath.Base(path), err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
