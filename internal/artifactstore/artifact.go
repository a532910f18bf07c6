package artifactstore

import "time"

// Artifact describes one finalized file under the store: its kind,
// producing item, content hash, and size, as recorded once the file has
// been renamed into place.
type Artifact struct {
	ItemID    string
	Kind      Kind
	Path      string
	SizeBytes int64
	SHA256Hex string
	CreatedAt time.Time
}
