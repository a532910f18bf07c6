package artifactstore

import "os"

// ItemArtifactPaths is the subset of statestore.Item reconciliation needs:
// every non-empty path the item currently references.
type ItemArtifactPaths interface {
	ReferencedArtifactPaths() []string
}

// ArtifactsExist reports whether every artifact path an item references
// is present on disk, satisfying statestore.ArtifactChecker. A missing
// file means the less-advanced side of a reconciliation should win.
func ArtifactsExist(item ItemArtifactPaths) bool {
	for _, path := range item.ReferencedArtifactPaths() {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return false
		}
	}
	return true
}
