package stagecatalog

import (
	"fmt"

	"shortfactory/internal/artifactstore"
	"shortfactory/internal/config"
	"shortfactory/internal/resilience"
	"shortfactory/internal/statestore"
)

// registry is the static stage table, ordered the way the teacher's
// workflow.Manager orders its lanes: approval first, then the production
// lanes in pipeline order. Order only matters for Resolve's tie-break, and
// no two entries ever share a FromStatus, so ties cannot occur in practice.
var registry = []Declaration{
	{
		Name:              "approval",
		FromStatus:        statestore.StatusPendingApproval,
		ToStatus:          statestore.StatusApproved,
		OperationClass:    resilience.ClassAPI,
		MaxAttempts:       1,
		EstimatedDuration: DurationShort,
	},
	{
		Name:              "scripting",
		FromStatus:        statestore.StatusApproved,
		ToStatus:          statestore.StatusScripted,
		ProducesArtifacts: []artifactstore.Kind{artifactstore.KindScript},
		OperationClass:    resilience.ClassGeneration,
		MaxAttempts:       3,
		EstimatedDuration: DurationMedium,
		PoolSize:          func(p config.StagePool) int { return p.Scripting },
	},
	{
		Name:              "narration",
		FromStatus:        statestore.StatusScripted,
		ToStatus:          statestore.StatusNarrated,
		RequiredArtifacts: []artifactstore.Kind{artifactstore.KindScript},
		ProducesArtifacts: []artifactstore.Kind{artifactstore.KindNarration},
		OperationClass:    resilience.ClassGeneration,
		MaxAttempts:       3,
		EstimatedDuration: DurationMedium,
		PoolSize:          func(p config.StagePool) int { return p.Narrating },
	},
	{
		Name:              "clipsourcing",
		FromStatus:        statestore.StatusNarrated,
		ToStatus:          statestore.StatusClipsSourced,
		RequiredArtifacts: []artifactstore.Kind{artifactstore.KindNarration},
		ProducesArtifacts: []artifactstore.Kind{artifactstore.KindStockClip},
		OperationClass:    resilience.ClassSearch,
		MaxAttempts:       3,
		EstimatedDuration: DurationMedium,
		PoolSize:          func(p config.StagePool) int { return p.SourcingClips },
	},
	{
		Name:              "assembly",
		FromStatus:        statestore.StatusClipsSourced,
		ToStatus:          statestore.StatusAssembled,
		RequiredArtifacts: []artifactstore.Kind{artifactstore.KindNarration, artifactstore.KindStockClip},
		ProducesArtifacts: []artifactstore.Kind{artifactstore.KindAssembledVideo},
		OperationClass:    resilience.ClassGeneration,
		MaxAttempts:       2,
		EstimatedDuration: DurationLong,
		PoolSize:          func(p config.StagePool) int { return p.Assembling },
	},
	{
		Name:              "captioning",
		FromStatus:        statestore.StatusAssembled,
		ToStatus:          statestore.StatusCaptioned,
		RequiredArtifacts: []artifactstore.Kind{artifactstore.KindAssembledVideo},
		ProducesArtifacts: []artifactstore.Kind{artifactstore.KindCaptionedVideo},
		OperationClass:    resilience.ClassGeneration,
		MaxAttempts:       2,
		EstimatedDuration: DurationLong,
		PoolSize:          func(p config.StagePool) int { return p.Captioning },
	},
	{
		Name:              "metadata",
		FromStatus:        statestore.StatusCaptioned,
		ToStatus:          statestore.StatusMetadataReady,
		RequiredArtifacts: []artifactstore.Kind{artifactstore.KindCaptionedVideo},
		ProducesArtifacts: []artifactstore.Kind{artifactstore.KindMetadataJSON},
		OperationClass:    resilience.ClassGeneration,
		MaxAttempts:       3,
		EstimatedDuration: DurationShort,
		PoolSize:          func(p config.StagePool) int { return p.Metadata },
	},
	{
		Name:              "publishing",
		FromStatus:        statestore.StatusMetadataReady,
		ToStatus:          statestore.StatusPublished,
		RequiredArtifacts: []artifactstore.Kind{artifactstore.KindCaptionedVideo, artifactstore.KindMetadataJSON},
		OperationClass:    resilience.ClassDownload,
		MaxAttempts:       3,
		EstimatedDuration: DurationLong,
		PoolSize:          func(p config.StagePool) int { return p.Publishing },
	},
}

var byName = func() map[string]Declaration {
	m := make(map[string]Declaration, len(registry))
	for _, d := range registry {
		m[d.Name] = d
	}
	return m
}()

var byFromStatus = func() map[statestore.Status]Declaration {
	m := make(map[statestore.Status]Declaration, len(registry))
	for _, d := range registry {
		if _, exists := m[d.FromStatus]; exists {
			panic(fmt.Sprintf("stagecatalog: duplicate FromStatus %q", d.FromStatus))
		}
		m[d.FromStatus] = d
	}
	return m
}()

// All returns every declaration in registry order.
func All() []Declaration {
	cp := make([]Declaration, len(registry))
	copy(cp, registry)
	return cp
}

// Lookup returns the declaration with the given stage name.
func Lookup(name string) (Declaration, bool) {
	d, ok := byName[name]
	return d, ok
}

// Resolve returns the unique stage eligible to run next for item, or false
// if no registered stage applies (e.g. the item is terminal, or waiting on
// a status this registry does not drive, such as a retryable-error status
// awaiting RetryAfter).
func Resolve(item *statestore.Item) (Declaration, bool) {
	d, ok := byFromStatus[item.Status]
	if !ok {
		return Declaration{}, false
	}
	if !d.eligible(item) {
		return Declaration{}, false
	}
	return d, true
}
