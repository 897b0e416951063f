// Package store opens the local SQLite database, brings its schema up to
// date and exposes one repository per table.
//
// Store is the Entity Store consumed by the backup package. Bulk operations
// that touch several tables (DeleteAllData, DeleteCar) run inside a single
// SQL transaction.
package store
