package expenses

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/evtracker/internal/dbx"
	"github.com/dmitrijs2005/evtracker/internal/models"
)

const selectColumns = `id, date, energy_charged, charger_type, odometer, cost, notes,
	is_initial_record, expense_type, currency, car_id`

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) FetchAll(ctx context.Context, carID *int64) ([]models.Expense, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if carID == nil {
		rows, err = r.db.QueryContext(ctx, `SELECT `+selectColumns+` FROM expenses ORDER BY date, id`)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+selectColumns+` FROM expenses WHERE car_id = ? ORDER BY date, id`, *carID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select expenses: %w", err)
	}
	defer rows.Close()

	var result []models.Expense
	for rows.Next() {
		e, err := scanExpense(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, e models.Expense) (int64, error) {
	query := `INSERT INTO expenses (date, energy_charged, charger_type, odometer, cost, notes,
			is_initial_record, expense_type, currency, car_id)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		dbx.FormatTime(e.Date), e.EnergyCharged, string(e.ChargerType), e.Odometer, dbx.NullFloat64(e.Cost),
		e.Notes, e.IsInitialRecord, string(e.ExpenseType), string(e.Currency), dbx.NullInt64(e.CarID()))
	if err != nil {
		return 0, fmt.Errorf("failed to insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get expense id: %w", err)
	}
	return id, nil
}

func (r *SQLiteRepository) DeleteAllForCar(ctx context.Context, carID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM expenses WHERE car_id = ?`, carID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expenses: %w", err)
	}
	return res.RowsAffected()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExpense(s scanner) (models.Expense, error) {
	var (
		e           models.Expense
		id          int64
		date        string
		charger     string
		cost        sql.NullFloat64
		expenseType string
		currency    string
		carID       sql.NullInt64
	)
	if err := s.Scan(&id, &date, &e.EnergyCharged, &charger, &e.Odometer, &cost, &e.Notes,
		&e.IsInitialRecord, &expenseType, &currency, &carID); err != nil {
		return models.Expense{}, err
	}

	var err error
	if e.Date, err = dbx.ParseTime(date); err != nil {
		return models.Expense{}, err
	}

	e.ID = &id
	e.Cost = dbx.Float64Ptr(cost)
	// Unknown codes fall back to defaults here. The backup validator rejects
	// them instead; the two policies are kept apart on purpose.
	e.ChargerType = models.ParseChargerType(charger)
	e.ExpenseType = models.ParseExpenseType(expenseType)
	e.Currency = models.ParseCurrency(currency)
	return e.WithCarIDUnchecked(dbx.Int64Ptr(carID)), nil
}
