package dashboard

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// MemoryStore is an in-process RowStore, used by tests and by any
// single-operator deployment that has not wired an external row store.
type MemoryStore struct {
	mu     sync.Mutex
	rows   map[string]Row
	nextID int
	clock  func() time.Time
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: map[string]Row{}, clock: time.Now}
}

func (m *MemoryStore) ListItems(ctx context.Context, filter Filter) ([]Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Row
	for _, row := range m.rows {
		if filter.matches(row) {
			out = append(out, row)
		}
	}
	return out, nil
}

func (m *MemoryStore) AppendItem(ctx context.Context, fields map[string]string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	id := fmt.Sprintf("I%d", m.nextID)
	now := m.clock()
	row := Row{ItemID: id, CreatedAt: now, UpdatedAt: now}
	applyFields(&row, fields)
	m.rows[id] = row
	return id, nil
}

func (m *MemoryStore) UpdateFields(ctx context.Context, itemID string, fields map[string]string, expectedState string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[itemID]
	if !ok {
		return ErrNotFound
	}
	if expectedState != "" && row.Status != expectedState {
		return ErrStale
	}
	applyFields(&row, fields)
	row.UpdatedAt = m.clock()
	m.rows[itemID] = row
	return nil
}

func (m *MemoryStore) GetItem(ctx context.Context, itemID string) (Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	row, ok := m.rows[itemID]
	if !ok {
		return Row{}, ErrNotFound
	}
	return row, nil
}

func applyFields(row *Row, fields map[string]string) {
	for key, value := range fields {
		switch key {
		case "source":
			row.Source = value
		case "title_concept":
			row.TitleConcept = value
		case "status":
			row.Status = value
		case "script_path":
			row.ScriptPath = value
		case "audio_file":
			row.AudioFile = value
		case "video_file":
			row.VideoFile = value
		case "publication_url":
			row.PublicationURL = value
		case "error_log":
			row.ErrorLog = value
		}
	}
}
