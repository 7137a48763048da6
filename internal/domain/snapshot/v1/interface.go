package snapshotv1

import "context"

// Publisher defines the interface for publishing live snapshots of the order
// book to downstream consumers. Snapshots are observational only and are
// never loaded back; the book is rebuilt from the request stream each run.
type Publisher interface {
	Publish(ctx context.Context, snapshot *Snapshot) error
}
