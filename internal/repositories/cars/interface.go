package cars

import (
	"context"

	"github.com/dmitrijs2005/evtracker/internal/models"
)

// Repository describes persistence operations for cars.
type Repository interface {
	// GetAll returns every car ordered by id.
	GetAll(ctx context.Context) ([]models.Car, error)

	// GetByID returns a single car or common.ErrorNotFound.
	GetByID(ctx context.Context, id int64) (*models.Car, error)

	// Insert stores car and returns the id assigned by the store. car.ID is ignored.
	Insert(ctx context.Context, car models.Car) (int64, error)

	// UpdateMileage writes CurrentMileage and MileageSyncedAt of car.
	// It reports false when no row matched car.ID.
	UpdateMileage(ctx context.Context, car models.Car) (bool, error)

	// Delete removes the car row only. Dependent rows are handled by the caller.
	Delete(ctx context.Context, id int64) error
}
