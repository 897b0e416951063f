package models

import "time"

// PlannedMaintenanceRecord is a future service reminder, due by date, by
// odometer reading, or both.
type PlannedMaintenanceRecord struct {
	ID        *int64
	Name      string
	Notes     string
	When      *time.Time
	Odometer  *int64
	CarID     int64
	CreatedAt time.Time
}

// DelayedNotification links a scheduled OS notification to a car and,
// optionally, to the maintenance record that produced it.
type DelayedNotification struct {
	ID                *int64
	When              time.Time
	NotificationID    string
	MaintenanceRecord *int64
	CarID             int64
	CreatedAt         time.Time
}
