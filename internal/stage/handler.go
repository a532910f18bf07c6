package stage

import (
	"context"

	"shortfactory/internal/statestore"
)

// Handler describes the contract the scheduler needs from each stage.
type Handler interface {
	Prepare(context.Context, *statestore.Item) error
	Execute(context.Context, *statestore.Item) error
	HealthCheck(context.Context) Health
}
