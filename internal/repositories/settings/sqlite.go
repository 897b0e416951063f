package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/evtracker/internal/dbx"
	"github.com/dmitrijs2005/evtracker/internal/models"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

func (r *SQLiteRepository) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM user_settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting[%s]: %w", key, err)
	}
	return value, true, nil
}

func (r *SQLiteRepository) Set(ctx context.Context, key, value string) error {
	_, err := r.upsert(ctx, key, value)
	return err
}

func (r *SQLiteRepository) FetchCurrency(ctx context.Context) (models.Currency, error) {
	v, _, err := r.Get(ctx, models.SettingPreferredCurrency)
	if err != nil {
		return models.DefaultCurrency, err
	}
	return models.ParseCurrency(v), nil
}

func (r *SQLiteRepository) FetchLanguage(ctx context.Context) (models.Language, error) {
	v, _, err := r.Get(ctx, models.SettingPreferredLanguage)
	if err != nil {
		return models.DefaultLanguage, err
	}
	return models.ParseLanguage(v), nil
}

func (r *SQLiteRepository) UpsertCurrency(ctx context.Context, c models.Currency) (bool, error) {
	return r.upsert(ctx, models.SettingPreferredCurrency, string(c))
}

func (r *SQLiteRepository) UpsertLanguage(ctx context.Context, l models.Language) (bool, error) {
	return r.upsert(ctx, models.SettingPreferredLanguage, string(l))
}

func (r *SQLiteRepository) upsert(ctx context.Context, key, value string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO user_settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return false, fmt.Errorf("failed to set setting[%s]: %w", key, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
