package models

import "time"

// Car is a tracked vehicle. Exactly one car is expected to have
// SelectedForTracking set; nothing here enforces it.
type Car struct {
	ID                  *int64
	Name                string
	SelectedForTracking bool
	// BatteryCapacity is in kWh.
	BatteryCapacity *float64
	ExpenseCurrency Currency
	CurrentMileage  int64
	InitialMileage  int64
	MileageSyncedAt time.Time
	CreatedAt       time.Time
	FrontWheelSize  *string
	RearWheelSize   *string
}
