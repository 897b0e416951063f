// Package expenses provides SQLite persistence for models.Expense.
//
// Rows are read back through Expense.WithCarIDUnchecked: the stored car_id
// is authoritative and may be NULL for expenses that were never attached to
// a car.
package expenses
