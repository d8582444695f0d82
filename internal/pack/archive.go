package pack

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// IsArchivePath reports whether a pack path refers to a zip archive rather
// than a directory.
func IsArchivePath(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".zip")
}

// StagingDir creates a uniquely named staging directory under parent.
func StagingDir(parent, prefix string) (string, error) {
	dir := filepath.Join(parent, prefix+"_"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create staging dir: %w", err)
	}
	return dir, nil
}

// Compress zips every file in srcDir (flat, deflate) into destZip, then
// removes srcDir. The archive and the staged directory are never both
// present on success.
func Compress(srcDir, destZip string) error {
	out, err := os.Create(destZip)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	err = filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		w, err := zw.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		_, err = io.Copy(w, f)
		return err
	})
	if err != nil {
		zw.Close()
		out.Close()
		return fmt.Errorf("failed to build archive: %w", err)
	}
	if err := zw.Close(); err != nil {
		out.Close()
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}

	return os.RemoveAll(srcDir)
}

// Extract unpacks a zip archive into a fresh scratch directory under
// scratchParent and returns the scratch path. Entries may not escape the
// scratch directory. The caller removes the scratch dir when done.
func Extract(archivePath, scratchParent string) (string, error) {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, archivePath)
		}
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	defer zr.Close()

	scratch, err := StagingDir(scratchParent, "import")
	if err != nil {
		return "", err
	}

	for _, entry := range zr.File {
		if err := extractEntry(entry, scratch); err != nil {
			os.RemoveAll(scratch)
			return "", err
		}
	}

	return scratch, nil
}

func extractEntry(entry *zip.File, scratch string) error {
	dest := filepath.Join(scratch, filepath.FromSlash(entry.Name))
	rel, err := filepath.Rel(scratch, dest)
	if err != nil || strings.HasPrefix(rel, "..") {
		return fmt.Errorf("archive entry escapes scratch dir: %s", entry.Name)
	}

	if entry.FileInfo().IsDir() {
		return os.MkdirAll(dest, 0755)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create dir for %s: %w", entry.Name, err)
	}

	src, err := entry.Open()
	if err != nil {
		return fmt.Errorf("failed to open archive entry %s: %w", entry.Name, err)
	}
	defer src.Close()

	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", entry.Name, err)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return fmt.Errorf("failed to extract %s: %w", entry.Name, err)
	}

	return out.Close()
}
