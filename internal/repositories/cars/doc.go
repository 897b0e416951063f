// Package cars provides SQLite persistence for models.Car.
//
// SQLiteRepository works over a dbx.DBTX, so the same code runs against a
// *sql.DB or inside a transaction opened by the store. Timestamps are stored
// as UTC text (see dbx.FormatTime); unknown currency codes read back as
// models.DefaultCurrency.
package cars
