package database

import (
	"log"

	"bid_pricing/internal/infrastructure/snapshot"
)

const defaultSnapshotDBPath = "bidsync.db"

// ConnectSnapshotStore opens the local sqlite cache at SNAPSHOT_DB_PATH.
func ConnectSnapshotStore() *snapshot.SQLiteStore {
	store, err := snapshot.NewSQLiteStore(getenvDefault("SNAPSHOT_DB_PATH", defaultSnapshotDBPath))
	if err != nil {
		log.Fatalf("failed to open snapshot store: %v", err)
	}
	return store
}
