// Package cli is the evtracker command line: exporting the local store to a
// snapshot file, importing one back, and managing remote backups.
//
// NewRootCommand builds the cobra command tree. Configuration comes from
// defaults, an optional JSON file, an optional .env file, EVTRACKER_*
// environment variables and finally the persistent flags, in that order.
// The store and backup manager are opened once per invocation by App.
package cli
