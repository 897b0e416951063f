package expenses

import (
	"context"

	"github.com/dmitrijs2005/evtracker/internal/models"
)

// Repository describes persistence operations for expenses.
type Repository interface {
	// FetchAll returns expenses ordered by date then id. A nil carID returns
	// every expense, including unbound ones.
	FetchAll(ctx context.Context, carID *int64) ([]models.Expense, error)

	// Insert stores e and returns the new id. e.ID is ignored.
	Insert(ctx context.Context, e models.Expense) (int64, error)

	// DeleteAllForCar removes every expense of the car and returns how many went.
	DeleteAllForCar(ctx context.Context, carID int64) (int64, error)
}
