package artifactstore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Store is the root of the artifact tree. One Store instance should back
// one artifact root for the process's lifetime; Lock and the finalize
// path depend on in-process state (the lock manager) being shared across
// every caller touching the same item.
type Store struct {
	root    string
	lockDir string
	locks   *lockManager
	clock   func() time.Time
}

// Option customizes a Store at construction. Currently only used by tests
// to inject a deterministic clock.
type Option func(*Store)

// WithClock overrides the store's time source. Tests use this to assert
// exact artifact filenames without sleeping.
func WithClock(clock func() time.Time) Option {
	return func(s *Store) { s.clock = clock }
}

// Open prepares the artifact root and its lock directory, creating both if
// absent.
func Open(root string, opts ...Option) (*Store, error) {
	lockDir := filepath.Join(root, ".locks")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create artifact root: %w", err)
	}
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, fmt.Errorf("create lock directory: %w", err)
	}
	s := &Store{
		root:    root,
		lockDir: lockDir,
		locks:   newLockManager(lockDir),
		clock:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) now() time.Time { return s.clock() }

func (s *Store) itemDir(kind Kind, itemID string) string {
	return filepath.Join(s.root, string(kind), itemID)
}

// Lock acquires the per-item advisory lock, serializing every stage that
// touches this item (its state transition and all of its artifact
// writes/scans) across goroutines and processes. The returned release
// func must be called exactly once.
func (s *Store) Lock(ctx context.Context, itemID string) (func(), error) {
	return s.locks.Lock(ctx, itemID)
}

// WithLock runs fn while holding itemID's lock, releasing it on every exit
// path including a panic. This is the check-and-act primitive callers
// should use instead of a naked Exists/List followed by an unguarded
// Acquire or RemoveItem.
func (s *Store) WithLock(ctx context.Context, itemID string, fn func() error) error {
	release, err := s.Lock(ctx, itemID)
	if err != nil {
		return err
	}
	defer release()
	return fn()
}

// Acquire reserves a destination slot for a new artifact of the given kind
// for itemID. Callers must hold the item's lock for the duration of the
// write (Prepare through Finalize/Abort) so a directory scan never
// observes the temp file.
func (s *Store) Acquire(itemID string, kind Kind, ext string) (*Handle, error) {
	if !kind.valid() {
		return nil, fmt.Errorf("unknown artifact kind %q", kind)
	}
	dir := s.itemDir(kind, itemID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create item artifact directory: %w", err)
	}

	tempName := fmt.Sprintf(".tmp-%s-%d", randomNonce(), s.now().UnixNano())
	tempPath := filepath.Join(dir, tempName)
	f, err := os.OpenFile(tempPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create temp artifact file: %w", err)
	}

	return &Handle{
		store:    s,
		itemID:   itemID,
		kind:     kind,
		ext:      ext,
		tempPath: tempPath,
		finalDir: dir,
		file:     f,
		hasher:   sha256.New(),
	}, nil
}

// List performs a locked directory scan of every finalized artifact for
// itemID under kind, oldest first. Callers must hold the item's lock.
func (s *Store) List(itemID string, kind Kind) ([]Artifact, error) {
	dir := s.itemDir(kind, itemID)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scan artifact directory: %w", err)
	}

	var out []Artifact
	for _, entry := range entries {
		if entry.IsDir() || isTempName(entry.Name()) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			continue
		}
		hashHex, err := hashFile(path)
		if err != nil {
			continue
		}
		out = append(out, Artifact{
			ItemID:    itemID,
			Kind:      kind,
			Path:      path,
			SizeBytes: info.Size(),
			SHA256Hex: hashHex,
			CreatedAt: info.ModTime(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Exists reports whether at least one finalized artifact of kind exists
// for itemID. Callers must hold the item's lock for this check-and-act to
// be race-free with a concurrent Acquire/Finalize.
func (s *Store) Exists(itemID string, kind Kind) (bool, error) {
	artifacts, err := s.List(itemID, kind)
	if err != nil {
		return false, err
	}
	return len(artifacts) > 0, nil
}

// RemoveItem deletes every artifact directory for itemID across all
// kinds. Used by garbage collection and by an operator-triggered reset.
// Callers must hold the item's lock.
func (s *Store) RemoveItem(itemID string) error {
	for kind := range validKinds {
		dir := s.itemDir(kind, itemID)
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("remove artifact directory %s: %w", dir, err)
		}
	}
	return nil
}

func isTempName(name string) bool {
	return strings.HasPrefix(name, ".tmp-")
}

func randomNonce() string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d", time.Now().UnixNano())))
	return hex.EncodeToString(sum[:])[:8]
}
