package maintenance

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/evtracker/internal/common"
	"github.com/dmitrijs2005/evtracker/internal/dbtest"
	"github.com/dmitrijs2005/evtracker/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(carID int64) models.PlannedMaintenanceRecord {
	due := time.Date(2025, 9, 1, 9, 0, 0, 0, time.UTC)
	return models.PlannedMaintenanceRecord{
		Name:      "Tyre rotation",
		Notes:     "swap front and rear",
		When:      &due,
		Odometer:  models.Int64(20000),
		CarID:     carID,
		CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func TestInsertGetAll(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	id, err := r.Insert(ctx, record(1))
	require.NoError(t, err)

	noDue := record(2)
	noDue.When = nil
	noDue.Odometer = nil
	_, err = r.Insert(ctx, noDue)
	require.NoError(t, err)

	got, err := r.GetAll(ctx, models.Int64(1))
	require.NoError(t, err)
	require.Len(t, got, 1)
	want := record(1)
	want.ID = &id
	assert.Equal(t, want, got[0])

	all, err := r.GetAll(ctx, nil)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Nil(t, all[1].When)
	assert.Nil(t, all[1].Odometer)
}

func TestDeleteAllForCarAndDelete(t *testing.T) {
	r := NewSQLiteRepository(dbtest.Open(t))
	ctx := context.Background()

	_, err := r.Insert(ctx, record(1))
	require.NoError(t, err)
	_, err = r.Insert(ctx, record(1))
	require.NoError(t, err)
	keep, err := r.Insert(ctx, record(2))
	require.NoError(t, err)

	n, err := r.DeleteAllForCar(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	require.NoError(t, r.Delete(ctx, keep))
	require.ErrorIs(t, r.Delete(ctx, keep), common.ErrorNotFound)

	all, err := r.GetAll(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestGetAll_QueryError(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(`SELECT .* FROM planned_maintenance WHERE car_id`).
		WithArgs(int64(3)).
		WillReturnError(errors.New("locked"))

	_, err = NewSQLiteRepository(db).GetAll(context.Background(), models.Int64(3))
	require.ErrorContains(t, err, "failed to select planned maintenance")
	require.NoError(t, mock.ExpectationsWereMet())
}
