package archive

import (
	"archive/tar"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// RestoreParams holds all inputs needed to restore an archive.
type RestoreParams struct {
	ArchivePath string // Path to the .tar.zst archive
	StoreDest   string // Destination path for the player database (empty = skip)
	WorldDest   string // Destination path for the world file (empty = skip)
	ConfDest    string // Destination path for the config file (empty = skip)
	TextDest    string // Destination directory for text files (empty = skip)

	// OverwriteConf controls whether an existing config at ConfDest is
	// replaced. The data files are always replaced; configs may carry
	// local edits worth keeping.
	OverwriteConf bool
}

// RestoreResult summarizes a completed restore operation.
type RestoreResult struct {
	FilesRestored int
	Warnings      []string
}

// Restore extracts an archive, validates every checksum in its
// manifest, and copies the files to their destinations.
func Restore(params RestoreParams) (*RestoreResult, error) {
	result := &RestoreResult{}

	tmpDir, err := os.MkdirTemp("", "mud-restore-*")
	if err != nil {
		return nil, fmt.Errorf("restore: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	if err := extract(params.ArchivePath, tmpDir); err != nil {
		return nil, fmt.Errorf("restore: extract: %w", err)
	}

	data, err := os.ReadFile(filepath.Join(tmpDir, "manifest.json"))
	if err != nil {
		return nil, fmt.Errorf("restore: manifest.json not found in archive")
	}
	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("restore: parse manifest: %w", err)
	}

	for archName, entry := range manifest.Files {
		extractedPath := filepath.Join(tmpDir, filepath.FromSlash(archName))
		ok, err := validateChecksum(extractedPath, entry.SHA256)
		if err != nil {
			return nil, fmt.Errorf("restore: checksum %s: %w", archName, err)
		}
		if !ok {
			return nil, fmt.Errorf("restore: checksum mismatch for %s, archive may be corrupt", archName)
		}
	}

	restoreOne := func(archName, dest string) error {
		src := filepath.Join(tmpDir, filepath.FromSlash(archName))
		if _, err := os.Stat(src); err != nil || dest == "" {
			return nil
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("restore: create dir for %s: %w", dest, err)
		}
		if err := copyFile(src, dest); err != nil {
			return fmt.Errorf("restore: copy %s: %w", archName, err)
		}
		result.FilesRestored++
		return nil
	}

	if err := restoreOne("data/players.db", params.StoreDest); err != nil {
		return nil, err
	}

	// The world file keeps whatever base name it was archived with.
	for archName, entry := range manifest.Files {
		if entry.Type == "world" {
			if err := restoreOne(archName, params.WorldDest); err != nil {
				return nil, err
			}
		}
	}

	for archName, entry := range manifest.Files {
		if entry.Type != "conf" || params.ConfDest == "" {
			continue
		}
		if _, err := os.Stat(params.ConfDest); err == nil && !params.OverwriteConf {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("kept current config: %s", filepath.Base(params.ConfDest)))
			continue
		}
		if err := restoreOne(archName, params.ConfDest); err != nil {
			return nil, err
		}
	}

	textSrc := filepath.Join(tmpDir, "text")
	if info, err := os.Stat(textSrc); err == nil && info.IsDir() && params.TextDest != "" {
		if err := os.MkdirAll(params.TextDest, 0755); err != nil {
			return nil, fmt.Errorf("restore: create text dir: %w", err)
		}
		n, err := copyDir(textSrc, params.TextDest)
		if err != nil {
			return nil, fmt.Errorf("restore: copy text: %w", err)
		}
		result.FilesRestored += n
	}

	return result, nil
}

// extract unpacks a .tar.zst to a destination directory.
func extract(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer f.Close()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return err
	}
	defer zr.Close()

	tr := tar.NewReader(zr)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}

		// Sanitize path to prevent directory traversal.
		target := filepath.Join(destDir, filepath.FromSlash(hdr.Name))
		if !strings.HasPrefix(filepath.Clean(target), filepath.Clean(destDir)) {
			return fmt.Errorf("invalid archive entry: %s", hdr.Name)
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			out, err := os.Create(target)
			if err != nil {
				return err
			}
			if _, err := io.Copy(out, tr); err != nil {
				out.Close()
				return err
			}
			out.Close()
		}
	}
	return nil
}

// validateChecksum checks a file's SHA-256 against the expected hex string.
func validateChecksum(path, expected string) (bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return false, err
	}
	return hex.EncodeToString(h.Sum(nil)) == expected, nil
}

// copyDir recursively copies all files from src to dst. Returns the
// count of files copied.
func copyDir(src, dst string) (int, error) {
	count := 0
	err := filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		destPath := filepath.Join(dst, rel)
		if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
			return err
		}
		if err := copyFile(path, destPath); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
