// Package crosstab turns storage writes made by other bankfront processes
// into events.StorageChanged notifications, the way a browser delivers
// "storage" events to every other tab of the same origin.
//
// Delivery is best-effort and not transactional: two processes writing at
// the same time can race and one update can be lost. Each process treats its
// session as eventually consistent with storage and relies on backend
// revalidation to reconcile drift.
package crosstab

import (
	"context"

	"github.com/dmitrijs2005/bankfront/internal/client/events"
)

// Source watches some shared medium and calls emit for each change made by
// another process. Run blocks until ctx is done or the source fails.
type Source interface {
	Run(ctx context.Context, emit func(events.Event)) error
}

// Forward runs src and publishes everything it emits on bus.
func Forward(ctx context.Context, src Source, bus *events.Bus) error {
	return src.Run(ctx, bus.Publish)
}
