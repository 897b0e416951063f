package notifications

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/evtracker/internal/dbx"
	"github.com/dmitrijs2005/evtracker/internal/models"
)

const selectColumns = `id, fire_at, notification_id, maintenance_record, car_id, created_at`

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) GetAll(ctx context.Context, carID *int64) ([]models.DelayedNotification, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if carID == nil {
		rows, err = r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM delayed_notifications ORDER BY id`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+selectColumns+` FROM delayed_notifications WHERE car_id = ? ORDER BY id`, *carID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select delayed notifications: %w", err)
	}
	defer rows.Close()

	var result []models.DelayedNotification
	for rows.Next() {
		var (
			n                 models.DelayedNotification
			id                int64
			fireAt, createdAt string
			maintenance       sql.NullInt64
		)
		if err := rows.Scan(&id, &fireAt, &n.NotificationID, &maintenance, &n.CarID, &createdAt); err != nil {
			return nil, err
		}
		if n.When, err = dbx.ParseTime(fireAt); err != nil {
			return nil, err
		}
		if n.CreatedAt, err = dbx.ParseTime(createdAt); err != nil {
			return nil, err
		}
		n.ID = &id
		n.MaintenanceRecord = dbx.Int64Ptr(maintenance)
		result = append(result, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, n models.DelayedNotification) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO delayed_notifications (fire_at, notification_id, maintenance_record, car_id, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		dbx.FormatTime(n.When), n.NotificationID, dbx.NullInt64(n.MaintenanceRecord), n.CarID, dbx.FormatTime(n.CreatedAt))
	if err != nil {
		return 0, fmt.Errorf("failed to insert delayed notification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get delayed notification id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) DeleteForMaintenance(ctx context.Context, maintenanceID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM delayed_notifications WHERE maintenance_record = ?`, maintenanceID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete delayed notifications: %w", err)
	}
	return res.RowsAffected()
}
