package stage

import (
	"encoding/json"
	"strings"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/services"
)

// StockClip describes one candidate clip returned by a stock-footage
// provider search.
type StockClip struct {
	ID              string  `json:"id"`
	URL             string  `json:"url"`
	DurationSeconds float64 `json:"duration_seconds"`
	Width           int     `json:"width"`
	Height          int     `json:"height"`
}

// StockClipSearchResult is the decoded response body from a stock-footage
// search call, keyed on the query that produced it.
type StockClipSearchResult struct {
	Query string      `json:"query"`
	Clips []StockClip `json:"clips"`
}

// ParseStockClipSearchResult parses a stock-footage search response and
// returns the decoded result. On failure it returns a services.ErrValidation
// suitable for a stage's Execute method: malformed provider responses
// should fail the clip-sourcing stage rather than propagate a bare decode
// error.
func ParseStockClipSearchResult(raw string) (StockClipSearchResult, error) {
	if strings.TrimSpace(raw) == "" {
		return StockClipSearchResult{}, nil
	}
	var result StockClipSearchResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return StockClipSearchResult{}, services.Wrap(
			services.ErrValidation, "stage", "parse stock clip search result",
			"stock footage search response was not valid JSON", err)
	}
	return result, nil
}

// WriteArtifact acquires a destination slot for itemID/kind, writes data in
// full, and finalizes it, aborting the handle on any failure in between.
// Every stage adapter that produces a byte-sized artifact (as opposed to
// one written incrementally by an external tool, like ffmpeg's own output
// file) goes through this single path.
func WriteArtifact(store *artifactstore.Store, itemID string, kind artifactstore.Kind, ext string, data []byte) (artifactstore.Artifact, error) {
	handle, err := store.Acquire(itemID, kind, ext)
	if err != nil {
		return artifactstore.Artifact{}, services.Wrap(services.ErrTransient, "artifact", "acquire",
			"failed to reserve artifact destination", err)
	}
	if _, err := handle.Write(data); err != nil {
		handle.Abort()
		return artifactstore.Artifact{}, services.Wrap(services.ErrTransient, "artifact", "write",
			"failed to write artifact contents", err)
	}
	artifact, err := handle.Finalize()
	if err != nil {
		return artifactstore.Artifact{}, services.Wrap(services.ErrTransient, "artifact", "finalize",
			"failed to finalize artifact", err)
	}
	return artifact, nil
}
