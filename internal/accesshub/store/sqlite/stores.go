// Package sqlite implements the store interfaces on modernc.org/sqlite.
// Reads go straight to the pool; every write goes through the db.Worker so
// ownership checks and the writes they guard share one transaction.
package sqlite

import (
	"database/sql"

	dbpkg "github.com/BrandonDHaskell/accesshub/internal/db"
	"github.com/BrandonDHaskell/accesshub/internal/accesshub/store"
)

func NewStores(db *sql.DB, writer *dbpkg.Worker) store.Stores {
	return store.Stores{
		Users:       NewUserStore(db, writer),
		Hubs:        NewHubStore(db, writer),
		Heartbeats:  NewHeartbeatStore(db, writer),
		Points:      NewPointStore(db, writer),
		AccessUsers: NewAccessUserStore(db, writer),
		Events:      NewAccessEventStore(db, writer),
	}
}
