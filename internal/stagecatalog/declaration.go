package stagecatalog

import (
	"shortfactory/internal/artifactstore"
	"shortfactory/internal/config"
	"shortfactory/internal/resilience"
	"shortfactory/internal/statestore"
)

// DurationBucket is a coarse scheduling hint for how long a stage
// typically takes, used by the supervisor's health reporting rather than
// by any deadline enforcement (that comes from the operation class's
// fixed timeout).
type DurationBucket string

const (
	DurationShort  DurationBucket = "short"
	DurationMedium DurationBucket = "medium"
	DurationLong   DurationBucket = "long"
)

// Precondition gates whether a stage is actually ready to run once an
// item's status already matches its FromStatus. Most stages have no
// precondition beyond the status match itself; a nil Precondition means
// always eligible.
type Precondition func(item *statestore.Item) bool

// IdempotencySeed derives the seed fed into resilience.IdempotencyKey so
// re-running a stage on the same item produces the same provider-side
// idempotency key. The default (used when nil) is the item's Fingerprint.
type IdempotencySeed func(item *statestore.Item) string

// Declaration is one row of the stage registry: everything the scheduler
// needs to know about a stage without importing its adapter.
type Declaration struct {
	Name               string
	FromStatus         statestore.Status
	ToStatus           statestore.Status
	RequiredArtifacts  []artifactstore.Kind
	ProducesArtifacts  []artifactstore.Kind
	OperationClass     resilience.OperationClass
	MaxAttempts        int
	EstimatedDuration  DurationBucket
	Precondition       Precondition
	IdempotencySeed    IdempotencySeed
	PoolSize           func(config.StagePool) int
}

func (d Declaration) eligible(item *statestore.Item) bool {
	if item.Status != d.FromStatus {
		return false
	}
	if d.Precondition == nil {
		return true
	}
	return d.Precondition(item)
}

func (d Declaration) seed(item *statestore.Item) string {
	if d.IdempotencySeed != nil {
		return d.IdempotencySeed(item)
	}
	return item.Fingerprint
}
