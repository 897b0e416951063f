// Package backup exports the local store to a snapshot file and imports a
// snapshot back, replacing everything that was there.
//
// A snapshot is one JSON document holding every car, expense, planned
// maintenance record and delayed notification, plus the preferred currency
// and language. Encode and Decode map between Snapshot and that document;
// output is byte-stable for equal input. Validator checks a decoded
// snapshot before anything is changed.
//
// Manager sequences the work. An import is:
//
//	read + decode -> validate -> safety snapshot (written and synced)
//	-> wipe -> re-insert with fresh ids -> prune old safety snapshots
//
// If wipe or re-insert fails, the safety snapshot is replayed through the
// same wipe + re-insert path and an *ImportError is returned. If that replay
// fails too the store is in an unknown state and a *RollbackError carries
// the safety snapshot path so the user can recover by hand.
//
// Remote backups go through a remote.Store and follow the same paths.
// Retention keeps at most 3 local safety snapshots and at most 5 remote
// backups no older than 30 days.
package backup
