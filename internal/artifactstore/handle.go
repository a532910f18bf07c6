package artifactstore

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"path/filepath"
)

// Handle is a scoped acquisition of one destination artifact path. A
// caller writes to it via io.Writer, then calls either Finalize (rename
// into place) or Abort (discard the temp file) — exactly one of the two,
// on every exit path including error returns.
type Handle struct {
	store     *Store
	itemID    string
	kind      Kind
	ext       string
	tempPath  string
	finalDir  string
	file      *os.File
	hasher    hash.Hash
	size      int64
	closed    bool
	finalized bool
}

func (h *Handle) Write(p []byte) (int, error) {
	n, err := h.file.Write(p)
	h.size += int64(n)
	h.hasher.Write(p[:n])
	return n, err
}

// TempPath returns the in-progress file's path, useful for tools (ffmpeg,
// a TTS SDK) that want a filesystem path rather than an io.Writer.
func (h *Handle) TempPath() string {
	return h.tempPath
}

func (h *Handle) closeFile() error {
	if h.closed {
		return nil
	}
	h.closed = true
	return h.file.Close()
}

// Abort discards the temp file without ever exposing it under its final
// name. Safe to call after Finalize (no-op) and safe to call multiple
// times.
func (h *Handle) Abort() {
	if h.finalized {
		return
	}
	_ = h.closeFile()
	_ = os.Remove(h.tempPath)
}

// Finalize fsyncs the temp file, computes its content hash, and atomically
// renames it into <root>/<kind>/<item_id>/<timestamp>-<hash-prefix>.<ext>.
// If a file of that exact name already exists (same content hash raced to
// the same name), the loser deletes its own temp file and adopts the
// winner's path rather than erroring.
func (h *Handle) Finalize() (Artifact, error) {
	if h.finalized {
		return Artifact{}, fmt.Errorf("artifact handle already finalized")
	}
	if err := h.file.Sync(); err != nil {
		_ = h.closeFile()
		return Artifact{}, fmt.Errorf("fsync artifact: %w", err)
	}
	if err := h.closeFile(); err != nil {
		return Artifact{}, fmt.Errorf("close artifact: %w", err)
	}

	sum := h.hasher.Sum(nil)
	hashHex := hex.EncodeToString(sum)
	hashPrefix := hashHex[:12]
	finalName := fmt.Sprintf("%d-%s%s", h.store.now().UnixNano(), hashPrefix, h.ext)
	finalPath := filepath.Join(h.finalDir, finalName)

	if err := os.Rename(h.tempPath, finalPath); err != nil {
		if _, statErr := os.Stat(finalPath); statErr == nil {
			_ = os.Remove(h.tempPath)
			existingHash, hashErr := hashFile(finalPath)
			if hashErr == nil && existingHash != hashHex {
				return Artifact{}, fmt.Errorf("artifact name collision with mismatched content at %s", finalPath)
			}
		} else {
			return Artifact{}, fmt.Errorf("rename artifact into place: %w", err)
		}
	}
	h.finalized = true

	info, err := os.Stat(finalPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("stat finalized artifact: %w", err)
	}

	return Artifact{
		ItemID:    h.itemID,
		Kind:      h.kind,
		Path:      finalPath,
		SizeBytes: info.Size(),
		SHA256Hex: hashHex,
		CreatedAt: h.store.now(),
	}, nil
}

// FinalizeFromDisk finalizes a handle whose temp file was written by an
// external process (ffmpeg, whisper) rather than through Write: the
// tracked hasher never saw those bytes, so the content hash is computed by
// re-reading the file from disk instead. Callers must close any writer
// they held on TempPath before calling this.
func (h *Handle) FinalizeFromDisk() (Artifact, error) {
	if h.finalized {
		return Artifact{}, fmt.Errorf("artifact handle already finalized")
	}
	_ = h.closeFile()

	hashHex, err := hashFile(h.tempPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("hash externally written artifact: %w", err)
	}
	hashPrefix := hashHex[:12]
	finalName := fmt.Sprintf("%d-%s%s", h.store.now().UnixNano(), hashPrefix, h.ext)
	finalPath := filepath.Join(h.finalDir, finalName)

	if err := os.Rename(h.tempPath, finalPath); err != nil {
		if _, statErr := os.Stat(finalPath); statErr == nil {
			_ = os.Remove(h.tempPath)
			existingHash, hashErr := hashFile(finalPath)
			if hashErr == nil && existingHash != hashHex {
				return Artifact{}, fmt.Errorf("artifact name collision with mismatched content at %s", finalPath)
			}
		} else {
			return Artifact{}, fmt.Errorf("rename artifact into place: %w", err)
		}
	}
	h.finalized = true

	info, err := os.Stat(finalPath)
	if err != nil {
		return Artifact{}, fmt.Errorf("stat finalized artifact: %w", err)
	}
	return Artifact{
		ItemID:    h.itemID,
		Kind:      h.kind,
		Path:      finalPath,
		SizeBytes: info.Size(),
		SHA256Hex: hashHex,
		CreatedAt: h.store.now(),
	}, nil
}

func hashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
