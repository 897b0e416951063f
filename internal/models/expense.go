package models

import (
	"errors"
	"time"
)

// ErrCarIDAlreadySet is returned by Expense.WithCarID when the expense is
// already bound to a car.
var ErrCarIDAlreadySet = errors.New("expense already belongs to a car")

// Expense is a single car expense. EnergyCharged is only meaningful for
// charging expenses. IsInitialRecord marks the synthetic first record that
// sets a car's starting odometer.
//
// The owning car is write-once: use WithCarID for normal flows. Import and
// migration code that must rebind an expense uses WithCarIDUnchecked.
type Expense struct {
	ID              *int64
	Date            time.Time
	EnergyCharged   float64
	ChargerType     ChargerType
	Odometer        int64
	Cost            *float64
	Notes           string
	IsInitialRecord bool
	ExpenseType     ExpenseType
	Currency        Currency

	carID *int64
}

// CarID returns the owning car id, or nil when the expense is unbound.
func (e Expense) CarID() *int64 {
	if e.carID == nil {
		return nil
	}
	id := *e.carID
	return &id
}

// WithCarID returns a copy of e bound to the given car. It fails if e already
// has a car.
func (e Expense) WithCarID(id int64) (Expense, error) {
	if e.carID != nil {
		return e, ErrCarIDAlreadySet
	}
	e.carID = &id
	return e, nil
}

// WithCarIDUnchecked returns a copy of e bound to id (nil unbinds it),
// regardless of any existing binding.
func (e Expense) WithCarIDUnchecked(id *int64) Expense {
	if id == nil {
		e.carID = nil
		return e
	}
	v := *id
	e.carID = &v
	return e
}
