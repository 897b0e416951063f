package cars

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evtracker/internal/common"
	"github.com/dmitrijs2005/evtracker/internal/dbx"
	"github.com/dmitrijs2005/evtracker/internal/models"
)

const selectColumns = `id, name, selected_for_tracking, battery_capacity, expense_currency,
	current_mileage, initial_mileage, mileage_synced_at, created_at, front_wheel_size, rear_wheel_size`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.Car, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM cars ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to select cars: %w", err)
	}
	defer rows.Close()

	var result []models.Car
	for rows.Next() {
		car, err := scanCar(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, car)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.Car, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+selectColumns+` FROM cars WHERE id = ?`, id)
	car, err := scanCar(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrorNotFound
	}
	if err != nil {
		return nil, err
	}
	return &car, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, car models.Car) (int64, error) {
	query := `INSERT INTO cars (name, selected_for_tracking, battery_capacity, expense_currency,
			current_mileage, initial_mileage, mileage_synced_at, created_at, front_wheel_size, rear_wheel_size)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		car.Name, car.SelectedForTracking, dbx.NullFloat64(car.BatteryCapacity), string(car.ExpenseCurrency),
		car.CurrentMileage, car.InitialMileage, dbx.FormatTime(car.MileageSyncedAt), dbx.FormatTime(car.CreatedAt),
		dbx.NullString(car.FrontWheelSize), dbx.NullString(car.RearWheelSize))
	if err != nil {
		return 0, fmt.Errorf("failed to insert car: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get car id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) UpdateMileage(ctx context.Context, car models.Car) (bool, error) {
	if car.ID == nil {
		return false, nil
	}
	res, err := r.db.ExecContext(ctx, `UPDATE cars SET current_mileage = ?, mileage_synced_at = ? WHERE id = ?`,
		car.CurrentMileage, dbx.FormatTime(car.MileageSyncedAt), *car.ID)
	if err != nil {
		return false, fmt.Errorf("failed to update mileage: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cars WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete car: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCar(s scanner) (models.Car, error) {
	var (
		car                   models.Car
		id                    int64
		battery               sql.NullFloat64
		currency              string
		syncedAt, createdAt   string
		frontWheel, rearWheel sql.NullString
	)
	if err := s.Scan(&id, &car.Name, &car.SelectedForTracking, &battery, &currency,
		&car.CurrentMileage, &car.InitialMileage, &syncedAt, &createdAt, &frontWheel, &rearWheel); err != nil {
		return models.Car{}, err
	}

	var err error
	if car.MileageSyncedAt, err = dbx.ParseTime(syncedAt); err != nil {
		return models.Car{}, err
	}
	if car.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
		return models.Car{}, err
	}

	car.ID = &id
	car.BatteryCapacity = dbx.Float64Ptr(battery)
	// Lenient on read: a row written by an older build keeps working.
	car.ExpenseCurrency = models.ParseCurrency(currency)
	car.FrontWheelSize = dbx.StringPtr(frontWheel)
	car.RearWheelSize = dbx.StringPtr(rearWheel)
	return car, nil
}
