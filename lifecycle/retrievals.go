package lifecycle

import (
	"context"

	"github.com/cinesrc/cinesrc/catalog"
)

// Retrievals addresses the retrievals of one catalog by source id.
type Retrievals struct {
	manager *Manager
	catalog *catalog.Catalog
}

// NewRetrievals binds manager to the sources of c.
func NewRetrievals(manager *Manager, c *catalog.Catalog) *Retrievals {
	return &Retrievals{manager: manager, catalog: c}
}

func (r *Retrievals) Catalog() *catalog.Catalog {
	return r.catalog
}

// Key is the retrieval key of sourceID.
func (r *Retrievals) Key(sourceID string) Key {
	return KeyOf(r.catalog.Identity(), sourceID)
}

// StartRetrieval starts the catalog source sourceID. Ids outside the
// catalog are rejected with ErrUnknownSource.
func (r *Retrievals) StartRetrieval(ctx context.Context, sourceID string) (Snapshot, error) {
	item, ok := r.catalog.Lookup(sourceID)
	if !ok {
		k := r.Key(sourceID)
		return notStarted(k), &InvalidActionError{Action: "start", Key: k, Err: ErrUnknownSource}
	}
	return r.manager.StartChecked(ctx, r.catalog.Identity(), item)
}

func (r *Retrievals) PauseRetrieval(sourceID string) Snapshot {
	return r.manager.Pause(r.Key(sourceID))
}

func (r *Retrievals) ResumeRetrieval(sourceID string) Snapshot {
	return r.manager.Resume(r.Key(sourceID))
}

func (r *Retrievals) RetryRetrieval(sourceID string) Snapshot {
	return r.manager.Retry(r.Key(sourceID))
}

func (r *Retrievals) Snapshot(sourceID string) Snapshot {
	return r.manager.Snapshot(r.Key(sourceID))
}

// Acknowledge drops the retrieval of sourceID once it completed.
func (r *Retrievals) Acknowledge(sourceID string) bool {
	return r.manager.Acknowledge(r.Key(sourceID))
}

// Discard drops the retrieval of sourceID.
func (r *Retrievals) Discard(sourceID string) bool {
	return r.manager.Discard(r.Key(sourceID))
}

// OnProgress subscribes to the snapshots of sourceID.
func (r *Retrievals) OnProgress(sourceID string, fn func(Snapshot)) (cancel func()) {
	return r.manager.Subscribe(r.Key(sourceID), fn)
}
