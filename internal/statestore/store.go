package statestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"shortfactory/internal/config"
)

// Store manages item-state persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the item-state database under
// cfg.Paths.StateDir.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := filepath.Join(cfg.Paths.StateDir, "items.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Path returns the on-disk location of the state database.
func (s *Store) Path() string {
	return s.path
}

// ErrNotFound is returned when an item lookup fails.
var ErrNotFound = errors.New("item not found")

// Create inserts a new item, defaulting its status to
// StatusPendingApproval when none is set.
func (s *Store) Create(ctx context.Context, item *Item) error {
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	if item.Status == "" {
		item.Status = StatusPendingApproval
	}

	row, err := marshalItem(item)
	if err != nil {
		return err
	}

	_, err = s.execWithRetry(ctx, `
        INSERT INTO items (
            item_id, source, concept_text, status, failed_stage, retry_after,
            stage_attempts_json, script_path, narration_path, stock_clip_paths_json,
            assembled_video_path, captioned_video_path, metadata_json_path,
            title, description, tags_json, publication_url, last_error_json,
            fingerprint, created_at, updated_at, last_heartbeat
        ) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		row.itemID, row.source, row.conceptText, row.status, row.failedStage, row.retryAfter,
		row.stageAttemptsJSON, row.scriptPath, row.narrationPath, row.stockClipPathsJSON,
		row.assembledVideoPath, row.captionedVideoPath, row.metadataJSONPath,
		row.title, row.description, row.tagsJSON, row.publicationURL, row.lastErrorJSON,
		row.fingerprint, row.createdAt, row.updatedAt, row.lastHeartbeat,
	)
	if err != nil {
		return fmt.Errorf("insert item: %w", err)
	}
	return nil
}

// Get fetches a single item by id.
func (s *Store) Get(ctx context.Context, itemID string) (*Item, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE item_id = ?", itemID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item %s: %w", itemID, err)
	}
	return item, nil
}

// ListByStatus returns all items in the given status, ordered oldest-updated
// first for FIFO-within-stage fairness.
func (s *Store) ListByStatus(ctx context.Context, status Status) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" WHERE status = ? ORDER BY updated_at ASC", status)
	if err != nil {
		return nil, fmt.Errorf("list items by status: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// ListRetryable returns retryable_error items whose retry_after has elapsed.
func (s *Store) ListRetryable(ctx context.Context, now time.Time) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx,
		selectColumns+" WHERE status = ? AND retry_after IS NOT NULL AND retry_after <= ? ORDER BY updated_at ASC",
		StatusRetryableError, now.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("list retryable items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// ListAll returns every item, ordered oldest-updated first.
func (s *Store) ListAll(ctx context.Context) ([]*Item, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY updated_at ASC")
	if err != nil {
		return nil, fmt.Errorf("list all items: %w", err)
	}
	defer rows.Close()
	return scanItems(rows)
}

// Update persists the full row for item, bumping UpdatedAt.
func (s *Store) Update(ctx context.Context, item *Item) error {
	item.UpdatedAt = time.Now().UTC()
	row, err := marshalItem(item)
	if err != nil {
		return err
	}

	res, err := s.execWithRetry(ctx, `
        UPDATE items SET
            source = ?, concept_text = ?, status = ?, failed_stage = ?, retry_after = ?,
            stage_attempts_json = ?, script_path = ?, narration_path = ?, stock_clip_paths_json = ?,
            assembled_video_path = ?, captioned_video_path = ?, metadata_json_path = ?,
            title = ?, description = ?, tags_json = ?, publication_url = ?, last_error_json = ?,
            fingerprint = ?, updated_at = ?, last_heartbeat = ?
        WHERE item_id = ?`,
		row.source, row.conceptText, row.status, row.failedStage, row.retryAfter,
		row.stageAttemptsJSON, row.scriptPath, row.narrationPath, row.stockClipPathsJSON,
		row.assembledVideoPath, row.captionedVideoPath, row.metadataJSONPath,
		row.title, row.description, row.tagsJSON, row.publicationURL, row.lastErrorJSON,
		row.fingerprint, row.updatedAt, row.lastHeartbeat,
		row.itemID,
	)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateHeartbeat refreshes the liveness marker for an in-flight item.
func (s *Store) UpdateHeartbeat(ctx context.Context, itemID string) error {
	now := time.Now().UTC().Format(time.RFC3339Nano)
	_, err := s.execWithRetry(ctx,
		`UPDATE items SET last_heartbeat = ?, updated_at = ? WHERE item_id = ?`,
		now, now, itemID)
	if err != nil {
		return fmt.Errorf("update heartbeat: %w", err)
	}
	return nil
}
