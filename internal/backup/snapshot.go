package backup

import (
	"time"

	"github.com/dmitrijs2005/evtracker/internal/models"
)

// Snapshot is the whole exportable dataset.
type Snapshot struct {
	Metadata      Metadata
	Cars          []models.Car
	Expenses      []models.Expense
	Maintenance   []models.PlannedMaintenanceRecord
	Notifications []models.DelayedNotification
	Settings      Settings
}

type Metadata struct {
	CreatedAt     time.Time
	AppVersion    string
	DeviceName    string
	SchemaVersion int
}

// Settings holds the user settings carried in a snapshot. Nil means the
// value was absent from the document and is left untouched on import.
type Settings struct {
	Currency *models.Currency
	Language *models.Language
}
