// Package archive creates and restores .tar.zst snapshots of a game's
// data: the player database, the world file, the server config, and
// the text directory, with a checksummed manifest.
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
	"time"

	"github.com/klauspost/compress/zstd"
)

// Manifest describes the contents of an archive.
type Manifest struct {
	Version   int                  `json:"version"`
	Server    string               `json:"server"`
	Timestamp string               `json:"timestamp"`
	WorldName string               `json:"world_name"`
	Players   int                  `json:"players"`
	Files     map[string]FileEntry `json:"files"`
}

// FileEntry describes a single file within the archive.
type FileEntry struct {
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
	Type   string `json:"type"` // "players", "world", "conf", "text"
}

// Params holds all inputs needed to create an archive.
type Params struct {
	// StoreSnapshotFunc writes a hot snapshot of the player database
	// to destPath. Nil skips the database.
	StoreSnapshotFunc func(destPath string) error
	WorldPath         string   // Path to the world YAML file (empty = skip)
	ConfPath          string   // Path to the server config file (empty = skip)
	TextDir           string   // Path to the text files directory (empty = skip)
	ArchiveDir        string   // Output directory for the archive
	WorldName         string   // World name for the manifest
	PlayerCount       int      // Number of saved players for the manifest
	ExtraFiles        []string // Any further files, stored under extra/
}

// Create writes a .tar.zst archive of all game data and returns its path.
func Create(params Params) (string, error) {
	if err := os.MkdirAll(params.ArchiveDir, 0755); err != nil {
		return "", fmt.Errorf("archive: create dir %s: %w", params.ArchiveDir, err)
	}

	filename := fmt.Sprintf("archive-%s.tar.zst", time.Now().Format("20060102-150405"))
	archivePath := filepath.Join(params.ArchiveDir, filename)

	tmpDir, err := os.MkdirTemp("", "mud-archive-*")
	if err != nil {
		return "", fmt.Errorf("archive: create temp dir: %w", err)
	}
	defer os.RemoveAll(tmpDir)

	manifest := Manifest{
		Version:   1,
		Server:    "swampmud",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		WorldName: params.WorldName,
		Players:   params.PlayerCount,
		Files:     make(map[string]FileEntry),
	}

	// Stage the player database snapshot.
	var storeStaged string
	if params.StoreSnapshotFunc != nil {
		storeStaged = filepath.Join(tmpDir, "players.db")
		if err := params.StoreSnapshotFunc(storeStaged); err != nil {
			return "", fmt.Errorf("archive: store snapshot: %w", err)
		}
	}

	outFile, err := os.Create(archivePath)
	if err != nil {
		return "", fmt.Errorf("archive: create %s: %w", archivePath, err)
	}
	defer outFile.Close()

	zw, err := zstd.NewWriter(outFile)
	if err != nil {
		return "", fmt.Errorf("archive: zstd writer: %w", err)
	}
	defer zw.Close()
	tw := tar.NewWriter(zw)
	defer tw.Close()

	if storeStaged != "" {
		entry, err := addFileToTar(tw, storeStaged, "data/players.db")
		if err != nil {
			return "", err
		}
		entry.Type = "players"
		manifest.Files["data/players.db"] = entry
	}

	if params.WorldPath != "" {
		if _, err := os.Stat(params.WorldPath); err == nil {
			archName := "data/" + filepath.Base(params.WorldPath)
			entry, err := addFileToTar(tw, params.WorldPath, archName)
			if err != nil {
				return "", err
			}
			entry.Type = "world"
			manifest.Files[archName] = entry
		}
	}

	if params.ConfPath != "" {
		if _, err := os.Stat(params.ConfPath); err == nil {
			archName := "conf/" + filepath.Base(params.ConfPath)
			entry, err := addFileToTar(tw, params.ConfPath, archName)
			if err != nil {
				return "", err
			}
			entry.Type = "conf"
			manifest.Files[archName] = entry
		}
	}

	if params.TextDir != "" {
		if info, err := os.Stat(params.TextDir); err == nil && info.IsDir() {
			entries, err := addDirToTar(tw, params.TextDir, "text")
			if err != nil {
				return "", err
			}
			for k, v := range entries {
				v.Type = "text"
				manifest.Files[k] = v
			}
		}
	}

	for _, extra := range params.ExtraFiles {
		if _, err := os.Stat(extra); err == nil {
			archName := "extra/" + filepath.Base(extra)
			entry, err := addFileToTar(tw, extra, archName)
			if err != nil {
				return "", err
			}
			manifest.Files[archName] = entry
		}
	}

	// The manifest goes in last so everything it describes precedes it.
	manifestJSON, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return "", fmt.Errorf("archive: marshal manifest: %w", err)
	}
	if err := tw.WriteHeader(&tar.Header{
		Name:    "manifest.json",
		Size:    int64(len(manifestJSON)),
		Mode:    0644,
		ModTime: time.Now(),
	}); err != nil {
		return "", fmt.Errorf("archive: write manifest header: %w", err)
	}
	if _, err := tw.Write(manifestJSON); err != nil {
		return "", fmt.Errorf("archive: write manifest: %w", err)
	}

	return archivePath, nil
}

// addFileToTar adds a single file to the tar archive, computing its
// SHA-256 while writing.
func addFileToTar(tw *tar.Writer, srcPath, archName string) (FileEntry, error) {
	f, err := os.Open(srcPath)
	if err != nil {
		return FileEntry{}, fmt.Errorf("archive: open %s: %w", srcPath, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return FileEntry{}, fmt.Errorf("archive: stat %s: %w", srcPath, err)
	}

	// Tar paths always use forward slashes.
	archName = strings.ReplaceAll(archName, "\\", "/")

	if err := tw.WriteHeader(&tar.Header{
		Name:    archName,
		Size:    info.Size(),
		Mode:    0644,
		ModTime: info.ModTime(),
	}); err != nil {
		return FileEntry{}, fmt.Errorf("archive: header %s: %w", archName, err)
	}

	h := sha256.New()
	written, err := io.Copy(tw, io.TeeReader(f, h))
	if err != nil {
		return FileEntry{}, fmt.Errorf("archive: write %s: %w", archName, err)
	}

	return FileEntry{
		SHA256: hex.EncodeToString(h.Sum(nil)),
		Size:   written,
	}, nil
}

// addDirToTar recursively adds all files in a directory.
func addDirToTar(tw *tar.Writer, srcDir, archPrefix string) (map[string]FileEntry, error) {
	entries := make(map[string]FileEntry)
	err := filepath.Walk(srcDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		archName := archPrefix + "/" + filepath.ToSlash(rel)
		entry, err := addFileToTar(tw, path, archName)
		if err != nil {
			return err
		}
		entries[archName] = entry
		return nil
	})
	return entries, err
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}
