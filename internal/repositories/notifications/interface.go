// Package notifications stores delayed notification bookkeeping.
//
// Rows are not removed when a single car is deleted; only the bulk wipe in
// the store clears them. Removal per maintenance record goes through
// DeleteForMaintenance.
package notifications

import (
	"context"

	"github.com/dmitrijs2005/evtracker/internal/models"
)

type Repository interface {
	// GetAll returns the notifications of one car, or all when carID is nil.
	GetAll(ctx context.Context, carID *int64) ([]models.DelayedNotification, error)
	Insert(ctx context.Context, n models.DelayedNotification) (int64, error)
	DeleteForMaintenance(ctx context.Context, maintenanceID int64) (int64, error)
}
