package dashboard

import "time"

// Row is the dashboard's view of one item: the fixed column set the
// operator reads and edits directly, plus the state the pipeline needs
// for optimistic concurrency.
type Row struct {
	ItemID         string
	Source         string
	TitleConcept   string
	Status         string
	ScriptPath     string
	AudioFile      string
	VideoFile      string
	PublicationURL string
	ErrorLog       string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Filter narrows list_items to rows matching Status (when non-empty) and
// UpdatedSince (when non-zero).
type Filter struct {
	Status       string
	UpdatedSince time.Time
}

func (f Filter) matches(r Row) bool {
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	if !f.UpdatedSince.IsZero() && r.UpdatedAt.Before(f.UpdatedSince) {
		return false
	}
	return true
}
