// Package maintenance stores planned maintenance reminders.
package maintenance

import (
	"context"

	"github.com/dmitrijs2005/evtracker/internal/models"
)

// Repository describes persistence operations for planned maintenance.
type Repository interface {
	// GetAll returns the records of one car, or of every car when carID is nil.
	GetAll(ctx context.Context, carID *int64) ([]models.PlannedMaintenanceRecord, error)
	Insert(ctx context.Context, rec models.PlannedMaintenanceRecord) (int64, error)
	DeleteAllForCar(ctx context.Context, carID int64) (int64, error)
	// Delete returns common.ErrorNotFound for an unknown id.
	Delete(ctx context.Context, id int64) error
}
