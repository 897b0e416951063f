package maintenance

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/evtracker/internal/common"
	"github.com/dmitrijs2005/evtracker/internal/dbx"
	"github.com/dmitrijs2005/evtracker/internal/models"
)

const selectColumns = `id, name, notes, due_at, odometer, car_id, created_at`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetAll(ctx context.Context, carID *int64) ([]models.PlannedMaintenanceRecord, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if carID == nil {
		rows, err = r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM planned_maintenance ORDER BY id`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+selectColumns+` FROM planned_maintenance WHERE car_id = ? ORDER BY id`, *carID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select planned maintenance: %w", err)
	}
	defer rows.Close()

	var result []models.PlannedMaintenanceRecord
	for rows.Next() {
		var (
			rec       models.PlannedMaintenanceRecord
			id        int64
			dueAt     sql.NullString
			odometer  sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&id, &rec.Name, &rec.Notes, &dueAt, &odometer, &rec.CarID, &createdAt); err != nil {
			return nil, err
		}
		if rec.When, err = dbx.ParseNullTime(dueAt); err != nil {
			return nil, err
		}
		if rec.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
			return nil, err
		}
		rec.ID = &id
		rec.Odometer = dbx.Int64Ptr(odometer)
		result = append(result, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, rec models.PlannedMaintenanceRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO planned_maintenance (name, notes, due_at, odometer, car_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		rec.Name, rec.Notes, dbx.FormatNullTime(rec.When), dbx.NullInt64(rec.Odometer), rec.CarID, dbx.FormatTime(rec.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert planned maintenance: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get planned maintenance id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) DeleteAllForCar(ctx context.Context, carID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM planned_maintenance WHERE car_id = ?`, carID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete planned maintenance: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM planned_maintenance WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete planned maintenance: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
