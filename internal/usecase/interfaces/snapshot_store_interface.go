package interfaces

import "context"

// ISnapshotStore is the local key-value mirror used to restore the last
// known items and total before the backend answers. It is a cache, never a
// source of truth.
type ISnapshotStore interface {
	Put(ctx context.Context, key string, payload []byte) error
	Get(ctx context.Context, key string) (payload []byte, found bool, err error)
	Delete(ctx context.Context, key string) error
}
